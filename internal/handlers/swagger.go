package handlers

// @title Events API
// @version 1.0
// @description Backend for a minimal event-management application: list, view, create and sign up for events.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. Only required when AUTH_ENABLED is set.

// @tag.name events
// @tag.description Event listing, creation and signup

// @tag.name dev
// @tag.description Development helpers
