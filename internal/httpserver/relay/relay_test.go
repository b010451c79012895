package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/buildwise/minimax-relay/internal/app"
	"github.com/buildwise/minimax-relay/internal/config"
)

// countingUpstream wraps a provider mock and counts every outbound call the
// relay makes, so tests can assert that validation failures never leave the
// process.
type countingUpstream struct {
	calls   int64
	handler http.Handler
}

func (u *countingUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&u.calls, 1)
	u.handler.ServeHTTP(w, r)
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			ListenAddr:  ":0",
			BodyLimitMB: 4,
		},
		Provider: config.ProviderConfig{
			BaseURL: baseURL,
			Timeout: 5 * time.Second,
		},
		Jobs: config.JobsConfig{
			Image: config.JobConfig{PollInterval: time.Millisecond, MaxAttempts: 5},
			Video: config.JobConfig{PollInterval: time.Millisecond, MaxAttempts: 8},
		},
	}
}

// newTestApp builds a fiber app with the relay routes wired against the
// given upstream mock.
func newTestApp(t *testing.T, upstreamHandler http.Handler) (*fiber.App, *countingUpstream) {
	t.Helper()

	upstream := &countingUpstream{handler: upstreamHandler}
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	container, err := app.NewContainer(context.Background(), testConfig(srv.URL), nil)
	require.NoError(t, err)

	fiberApp := fiber.New()
	Register(fiberApp, container)
	return fiberApp, upstream
}

func postJSON(t *testing.T, fiberApp *fiber.App, path string, body string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := fiberApp.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	return resp, decoded
}

func chatUpstream(content string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{
			"choices":   []map[string]any{{"message": map[string]any{"role": "assistant", "content": content}}},
			"usage":     map[string]any{"tokens": 5},
			"base_resp": map[string]any{"status_code": 0, "status_msg": "success"},
		}
		_ = json.NewEncoder(w).Encode(body)
	})
}

func TestChatMissingFieldsSkipUpstream(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing api key", body: `{"messages":[{"role":"user","content":"hi"}]}`},
		{name: "missing messages", body: `{"apiKey":"k"}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			fiberApp, upstream := newTestApp(t, chatUpstream("hello"))

			resp, decoded := postJSON(t, fiberApp, "/v1/chat", tt.body)
			require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			require.Equal(t, "missing_field", decoded["error"])
			require.Zero(t, atomic.LoadInt64(&upstream.calls), "validation failures must not call the provider")
		})
	}
}

func TestChatRelaysFirstChoice(t *testing.T) {
	fiberApp, upstream := newTestApp(t, chatUpstream("hello"))

	resp, decoded := postJSON(t, fiberApp, "/v1/chat", `{"messages":[{"role":"user","content":"hi"}],"apiKey":"k"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "hello", decoded["message"])
	require.Equal(t, map[string]any{"tokens": float64(5)}, decoded["usage"])
	require.EqualValues(t, 1, atomic.LoadInt64(&upstream.calls))
}

func TestChatSurfacesProviderError(t *testing.T) {
	fiberApp, _ := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"base_resp":{"status_code":1008,"status_msg":"ignored"}}`))
	}))

	resp, decoded := postJSON(t, fiberApp, "/v1/chat", `{"messages":[{"role":"user","content":"hi"}],"apiKey":"k"}`)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "provider_error", decoded["error"])
	require.Equal(t, "Insufficient account balance", decoded["message"])
}

func TestChatRejectsMalformedBody(t *testing.T) {
	fiberApp, upstream := newTestApp(t, chatUpstream("hello"))

	resp, decoded := postJSON(t, fiberApp, "/v1/chat", `{"messages": [`)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid_body", decoded["error"])
	require.Zero(t, atomic.LoadInt64(&upstream.calls))
}

func TestVisionReturnsObjects(t *testing.T) {
	content := `{"objects":[{"name":"mug","box_2d":[100,200,300,400]}]}`
	raw, _ := json.Marshal(content)
	fiberApp, _ := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":` + string(raw) + `}}],"usage":{"tokens":9},"base_resp":{"status_code":0}}`))
	}))

	resp, decoded := postJSON(t, fiberApp, "/v1/vision", `{"imageBase64":"AAAA","apiKey":"k"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	objects, ok := decoded["objects"].([]any)
	require.True(t, ok)
	require.Len(t, objects, 1)
	first := objects[0].(map[string]any)
	require.Equal(t, "mug", first["name"])
	require.Equal(t, []any{float64(100), float64(200), float64(300), float64(400)}, first["box_2d"])
}

func TestVisionDegradesToEmptyList(t *testing.T) {
	// Well-formed JSON without an objects key means nothing detected.
	fiberApp, _ := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}],"base_resp":{"status_code":0}}`))
	}))

	resp, decoded := postJSON(t, fiberApp, "/v1/vision", `{"imageBase64":"AAAA","apiKey":"k"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	objects, ok := decoded["objects"].([]any)
	require.True(t, ok)
	require.Empty(t, objects)
}

func TestVisionMissingImage(t *testing.T) {
	fiberApp, upstream := newTestApp(t, chatUpstream("{}"))

	resp, decoded := postJSON(t, fiberApp, "/v1/vision", `{"apiKey":"k"}`)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "missing_field", decoded["error"])
	require.Zero(t, atomic.LoadInt64(&upstream.calls))
}

func TestBlueprintParsesModelOutput(t *testing.T) {
	blueprint := `{"title":"Birdhouse","mode":"assembly","difficulty":"beginner","time":"45 minutes","materials":["pine board"],"tools":["saw"],"summary":"Build a small birdhouse.","steps":[{"id":1,"text":"Cut the board.","videoPrompt":"sawing a board","diagramPrompt":"cut lines on a board"}]}`
	content, _ := json.Marshal("```json\n" + blueprint + "\n```")

	var upstreamBody map[string]any
	fiberApp, _ := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&upstreamBody)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":` + string(content) + `}}],"usage":{"tokens":50},"base_resp":{"status_code":0}}`))
	}))

	resp, decoded := postJSON(t, fiberApp, "/v1/blueprint",
		`{"imageBase64":"AAAA","objectName":"birdhouse","mode":"assembly","apiKey":"k"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	got, ok := decoded["blueprint"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Birdhouse", got["title"])
	require.Equal(t, "assembly", got["mode"])
	steps := got["steps"].([]any)
	require.Len(t, steps, 1)

	// The upstream call must force JSON mode and use the vision model.
	require.Equal(t, map[string]any{"type": "json_object"}, upstreamBody["response_format"])
	require.Equal(t, "MiniMax-VL-01", upstreamBody["model"])
	require.EqualValues(t, 4096, upstreamBody["max_tokens"])
}

func TestBlueprintRejectsBadMode(t *testing.T) {
	fiberApp, upstream := newTestApp(t, chatUpstream("{}"))

	resp, decoded := postJSON(t, fiberApp, "/v1/blueprint",
		`{"imageBase64":"AAAA","objectName":"chair","mode":"sideways","apiKey":"k"}`)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid_mode", decoded["error"])
	require.Zero(t, atomic.LoadInt64(&upstream.calls))
}

func TestBlueprintUnparseableOutput(t *testing.T) {
	fiberApp, _ := newTestApp(t, chatUpstream("this is not a blueprint at all"))

	resp, decoded := postJSON(t, fiberApp, "/v1/blueprint",
		`{"imageBase64":"AAAA","objectName":"chair","mode":"assembly","apiKey":"k"}`)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "invalid_blueprint", decoded["error"])
	require.Contains(t, decoded["details"], "not a blueprint")
}

func TestAudioReturnsDataURI(t *testing.T) {
	fiberApp, _ := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"audio":"QUJD"},"extra_info":{"audio_length":900},"base_resp":{"status_code":0}}`))
	}))

	resp, decoded := postJSON(t, fiberApp, "/v1/audio", `{"text":"hello","apiKey":"k"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "QUJD", decoded["audioData"])
	require.Equal(t, "data:audio/mp3;base64,QUJD", decoded["audioUrl"])
	require.Equal(t, map[string]any{"audio_length": float64(900)}, decoded["usage"])
}

func TestAudioMissingText(t *testing.T) {
	fiberApp, upstream := newTestApp(t, chatUpstream(""))

	resp, decoded := postJSON(t, fiberApp, "/v1/audio", `{"apiKey":"k"}`)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "missing_field", decoded["error"])
	require.Zero(t, atomic.LoadInt64(&upstream.calls))
}

func generationOK(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/image_generation", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"task_id":"task-1","base_resp":{"status_code":0}}`))
	})
	mux.HandleFunc("/v1/video_generation", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"task_id":"task-2","base_resp":{"status_code":0}}`))
	})
	mux.HandleFunc("/v1/query/image_generation", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"Success","file_id":"file-img","base_resp":{"status_code":0}}`))
	})
	mux.HandleFunc("/v1/query/video_generation", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"Success","file_id":"file-vid","base_resp":{"status_code":0}}`))
	})
	return mux
}

func TestImageJobReturnsRetrievalURL(t *testing.T) {
	fiberApp, _ := newTestApp(t, generationOK(t))

	resp, decoded := postJSON(t, fiberApp, "/v1/image", `{"prompt":"a red chair","apiKey":"k"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "task-1", decoded["taskId"])
	require.Equal(t, "file-img", decoded["fileId"])
	require.Contains(t, decoded["imageUrl"], "file_id=file-img")
}

func TestImageJobTimeoutDistinctFromFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/image_generation", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"task_id":"task-1","base_resp":{"status_code":0}}`))
	})
	mux.HandleFunc("/v1/query/image_generation", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"Processing","base_resp":{"status_code":0}}`))
	})
	fiberApp, _ := newTestApp(t, mux)

	resp, decoded := postJSON(t, fiberApp, "/v1/image", `{"prompt":"p","apiKey":"k"}`)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "generation_timeout", decoded["error"])
}

func TestImageJobFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/image_generation", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"task_id":"task-1","base_resp":{"status_code":0}}`))
	})
	mux.HandleFunc("/v1/query/image_generation", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"Fail","base_resp":{"status_code":0}}`))
	})
	fiberApp, _ := newTestApp(t, mux)

	resp, decoded := postJSON(t, fiberApp, "/v1/image", `{"prompt":"p","apiKey":"k"}`)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "generation_failed", decoded["error"])
}

func TestVideoJobReturnsRetrievalURL(t *testing.T) {
	fiberApp, _ := newTestApp(t, generationOK(t))

	resp, decoded := postJSON(t, fiberApp, "/v1/video", `{"prompt":"a drone shot","firstFrameImage":"AAAA","apiKey":"k"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "task-2", decoded["taskId"])
	require.Equal(t, "file-vid", decoded["fileId"])
	require.Contains(t, decoded["videoUrl"], "file_id=file-vid")
}

func TestImageJobReplaysIdempotentRequest(t *testing.T) {
	upstream := &countingUpstream{handler: generationOK(t)}
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	container, err := app.NewContainer(context.Background(), testConfig(srv.URL), redisClient)
	require.NoError(t, err)

	fiberApp := fiber.New()
	Register(fiberApp, container)

	send := func() map[string]any {
		req := httptest.NewRequest(http.MethodPost, "/v1/image",
			bytes.NewReader([]byte(`{"prompt":"p","apiKey":"k"}`)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "order-42")
		resp, err := fiberApp.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(raw, &decoded))
		return decoded
	}

	first := send()
	callsAfterFirst := atomic.LoadInt64(&upstream.calls)
	require.Positive(t, callsAfterFirst)

	second := send()
	require.Equal(t, first, second)
	require.Equal(t, callsAfterFirst, atomic.LoadInt64(&upstream.calls),
		"a replayed request must not submit a new job upstream")
}

func TestVideoMissingPrompt(t *testing.T) {
	fiberApp, upstream := newTestApp(t, generationOK(t))

	resp, decoded := postJSON(t, fiberApp, "/v1/video", `{"apiKey":"k"}`)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "missing_field", decoded["error"])
	require.Zero(t, atomic.LoadInt64(&upstream.calls))
}
