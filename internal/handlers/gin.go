package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"events-api/internal/middleware"
	"events-api/internal/models"
	"events-api/pkg/lambda"
)

// GinHandler serves gin requests through a lambda.Handler so the HTTP server
// and the Lambda function share one routing table
func GinHandler(handler lambda.Handler, corsHeaders map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := requestFromGin(c)
		if err != nil {
			status := http.StatusInternalServerError
			body := models.ErrorResponse{Message: MsgInternalError, Error: err.Error()}

			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				status = http.StatusRequestEntityTooLarge
				body = models.ErrorResponse{Message: MsgRequestTooLarge, Error: err.Error()}
			}
			writeResponse(c, lambda.JSON(status, body, corsHeaders))
			return
		}

		writeResponse(c, handler(c.Request.Context(), req))
	}
}

func requestFromGin(c *gin.Context) (*lambda.Request, error) {
	var body []byte
	if c.Request.Body != nil {
		var err error
		body, err = io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, err
		}
	}

	headers := make(map[string]string, len(c.Request.Header))
	for k, v := range c.Request.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	query := make(map[string]string)
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}

	return &lambda.Request{
		Method:      c.Request.Method,
		Path:        c.Request.URL.Path,
		Headers:     headers,
		QueryParams: query,
		Body:        body,
		RequestID:   c.GetString(middleware.RequestIDKey),
	}, nil
}

func writeResponse(c *gin.Context, resp *lambda.Response) {
	for k, v := range resp.Headers {
		c.Header(k, v)
	}
	c.Status(resp.StatusCode)
	if len(resp.Body) == 0 {
		c.Writer.WriteHeaderNow()
		return
	}
	_, _ = c.Writer.Write(resp.Body)
}
