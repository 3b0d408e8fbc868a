package lambda

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_HeaderIgnoresCase(t *testing.T) {
	req := &Request{Headers: map[string]string{"authorization": "Bearer x"}}

	assert.Equal(t, "Bearer x", req.Header("Authorization"))
	assert.Equal(t, "Bearer x", req.Header("authorization"))
	assert.Empty(t, req.Header("Content-Type"))
	assert.Empty(t, (&Request{}).Header("Authorization"))
}

func TestFromAPIGateway(t *testing.T) {
	event := events.APIGatewayProxyRequest{
		Resource:       "/events/{id}",
		Path:           "/events/7",
		HTTPMethod:     "GET",
		Headers:        map[string]string{"Origin": "https://app.example.com"},
		PathParameters: map[string]string{"id": "7"},
		Body:           "",
		RequestContext: events.APIGatewayProxyRequestContext{RequestID: "req-1"},
	}

	req, err := FromAPIGateway(event)
	require.NoError(t, err)
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/events/{id}", req.Resource)
	assert.Equal(t, "/events/7", req.Path)
	assert.Equal(t, "7", req.PathParams["id"])
	assert.Equal(t, "req-1", req.RequestID)
	assert.Empty(t, req.Body)
}

func TestFromAPIGateway_Base64Body(t *testing.T) {
	event := events.APIGatewayProxyRequest{
		HTTPMethod:      "POST",
		Resource:        "/events",
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"title":"T"}`)),
		IsBase64Encoded: true,
	}

	req, err := FromAPIGateway(event)
	require.NoError(t, err)
	assert.Equal(t, `{"title":"T"}`, string(req.Body))

	event.Body = "%%%"
	_, err = FromAPIGateway(event)
	assert.Error(t, err)
}

func TestToAPIGateway(t *testing.T) {
	resp := ToAPIGateway(&Response{
		StatusCode: 201,
		Headers:    map[string]string{"Access-Control-Allow-Origin": "*"},
		Body:       []byte(`{"message":"ok"}`),
	})

	assert.Equal(t, 201, resp.StatusCode)
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	assert.Equal(t, `{"message":"ok"}`, resp.Body)

	assert.Equal(t, 500, ToAPIGateway(nil).StatusCode)
}

type fakeContainer struct {
	closed atomic.Bool
}

func (f *fakeContainer) Close() error {
	f.closed.Store(true)
	return nil
}

func TestConnectionManager_InitializesOnce(t *testing.T) {
	var calls atomic.Int32
	cm := NewConnectionManager(func(ctx context.Context) (*fakeContainer, error) {
		calls.Add(1)
		return &fakeContainer{}, nil
	})

	assert.False(t, cm.IsHealthy())

	var wg sync.WaitGroup
	results := make([]*fakeContainer, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := cm.GetContainer(context.Background())
			assert.NoError(t, err)
			results[i] = c
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, c := range results {
		assert.Same(t, results[0], c)
	}
	assert.True(t, cm.IsHealthy())
}

func TestConnectionManager_RetriesFailedInit(t *testing.T) {
	fail := true
	cm := NewConnectionManager(func(ctx context.Context) (*fakeContainer, error) {
		if fail {
			return nil, errors.New("database unreachable")
		}
		return &fakeContainer{}, nil
	})

	_, err := cm.GetContainer(context.Background())
	require.Error(t, err)
	assert.False(t, cm.IsHealthy())

	fail = false
	c, err := cm.GetContainer(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestConnectionManager_Cleanup(t *testing.T) {
	cm := NewConnectionManager(func(ctx context.Context) (*fakeContainer, error) {
		return &fakeContainer{}, nil
	})

	require.NoError(t, cm.Cleanup())

	first, err := cm.GetContainer(context.Background())
	require.NoError(t, err)
	require.NoError(t, cm.Cleanup())
	assert.True(t, first.closed.Load())
	assert.False(t, cm.IsHealthy())

	second, err := cm.GetContainer(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestJSON(t *testing.T) {
	headers := map[string]string{"Access-Control-Allow-Origin": "*"}
	resp := JSON(201, map[string]string{"message": "ok"}, headers)

	assert.Equal(t, 201, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	assert.JSONEq(t, `{"message":"ok"}`, string(resp.Body))

	_, mutated := headers["Content-Type"]
	assert.False(t, mutated)
}

func TestJSON_UnencodableBody(t *testing.T) {
	resp := JSON(200, map[string]interface{}{"bad": make(chan int)}, nil)

	assert.Equal(t, 500, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Internal server error"}`, string(resp.Body))
}

func TestEmpty(t *testing.T) {
	resp := Empty(200, map[string]string{"Access-Control-Allow-Methods": "*"})

	assert.Equal(t, 200, resp.StatusCode)
	assert.Empty(t, resp.Body)
	assert.NotContains(t, resp.Headers, "Content-Type")
}
