package httptransport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"share-ingest-service/internal/entity"
	"share-ingest-service/internal/service"
	httptransport "share-ingest-service/internal/transport/http"
)

// ---- fakes ----

type storeStub struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *storeStub) Write(ctx context.Context, key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[key] = data
	return nil
}

func (s *storeStub) ResolveURL(key string) (string, error) {
	return "http://store.local/" + key, nil
}

type repoStub struct {
	mu        sync.Mutex
	items     []entity.WorkItem
	insertErr error
}

func (r *repoStub) Insert(ctx context.Context, item entity.WorkItem) (uuid.UUID, time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return uuid.Nil, time.Time{}, r.insertErr
	}
	id := uuid.New()
	item.ID = id
	item.CreatedAt = time.Now().UTC()
	r.items = append(r.items, item)
	return id, item.CreatedAt, nil
}

// ---- helpers ----

func newTestRouter(store *storeStub, repo *repoStub) http.Handler {
	d := service.NewDispatcher(
		service.NewAssetUploader(store),
		service.NewQueuePublisher(repo),
	)
	h := httptransport.NewHandler(d, 32<<20)
	return httptransport.Routes(h, "")
}

func multipartBody(t *testing.T, fields map[string]string, images [][]byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for i, data := range images {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="img%d.png"`, i))
		hdr.Set("Content-Type", "image/png")
		part, err := w.CreatePart(hdr)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

type shareResp struct {
	State     string `json:"state"`
	Mode      string `json:"mode"`
	Total     int    `json:"total"`
	Published int    `json:"published"`
	Items     []struct {
		Index int    `json:"index"`
		ID    string `json:"id"`
		Error string `json:"error"`
	} `json:"items"`
}

func decodeShareResp(t *testing.T, rr *httptest.ResponseRecorder) shareResp {
	t.Helper()
	var resp shareResp
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json response: %v, body=%s", err, rr.Body.String())
	}
	return resp
}

// ---- tests ----

func TestHTTP_ShareText_201_Done(t *testing.T) {
	store := &storeStub{}
	repo := &repoStub{}
	router := newTestRouter(store, repo)

	body, ct := multipartBody(t, map[string]string{"mode": "idea", "text": "buy milk"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/share", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body=%s", rr.Code, rr.Body.String())
	}

	resp := decodeShareResp(t, rr)
	if resp.State != "done" || resp.Published != 1 || resp.Total != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(resp.Items))
	}
	if _, err := uuid.Parse(resp.Items[0].ID); err != nil {
		t.Fatalf("expected uuid item id, got %q", resp.Items[0].ID)
	}

	if len(repo.items) != 1 || repo.items[0].Type != entity.TypeText {
		t.Fatalf("expected one text work item, got %+v", repo.items)
	}
	if len(store.objects) != 0 {
		t.Fatalf("text share must not write to the content store")
	}
}

func TestHTTP_ShareSingleImage_201_Done(t *testing.T) {
	store := &storeStub{}
	repo := &repoStub{}
	router := newTestRouter(store, repo)

	body, ct := multipartBody(t, map[string]string{"mode": "study"}, [][]byte{testPNG(t)})
	req := httptest.NewRequest(http.MethodPost, "/share", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body=%s", rr.Code, rr.Body.String())
	}

	resp := decodeShareResp(t, rr)
	if resp.State != "done" || resp.Published != 1 || resp.Mode != "study" {
		t.Fatalf("unexpected response %+v", resp)
	}

	if len(repo.items) != 1 {
		t.Fatalf("expected 1 work item, got %d", len(repo.items))
	}
	it := repo.items[0]
	if it.Type != entity.TypeImage || it.URL == nil || it.StoragePath == nil {
		t.Fatalf("unexpected image item %+v", it)
	}
	if len(store.objects) != 1 {
		t.Fatalf("expected 1 stored object, got %d", len(store.objects))
	}
}

func TestHTTP_ShareMultipleImages_FanOut(t *testing.T) {
	store := &storeStub{}
	repo := &repoStub{}
	router := newTestRouter(store, repo)

	img := testPNG(t)
	body, ct := multipartBody(t, map[string]string{"mode": "tech"}, [][]byte{img, img, img})
	req := httptest.NewRequest(http.MethodPost, "/share", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body=%s", rr.Code, rr.Body.String())
	}
	resp := decodeShareResp(t, rr)
	if resp.State != "done" || resp.Published != 3 || resp.Total != 3 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(repo.items) != 3 || len(store.objects) != 3 {
		t.Fatalf("expected 3 items and 3 objects, got %d/%d", len(repo.items), len(store.objects))
	}
}

func TestHTTP_Share_PublishFailure_Stalled(t *testing.T) {
	store := &storeStub{}
	repo := &repoStub{insertErr: errors.New("queue unavailable")}
	router := newTestRouter(store, repo)

	body, ct := multipartBody(t, map[string]string{"mode": "study"}, [][]byte{testPNG(t)})
	req := httptest.NewRequest(http.MethodPost, "/share", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", rr.Code, rr.Body.String())
	}
	resp := decodeShareResp(t, rr)
	if resp.State != "stalled" || resp.Published != 0 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Items[0].Error == "" {
		t.Fatalf("expected per-item error in response")
	}
}

func TestHTTP_Share_NoMode_Cancelled(t *testing.T) {
	store := &storeStub{}
	repo := &repoStub{}
	router := newTestRouter(store, repo)

	body, ct := multipartBody(t, map[string]string{"text": "buy milk"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/share", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", rr.Code, rr.Body.String())
	}
	resp := decodeShareResp(t, rr)
	if resp.State != "cancelled" {
		t.Fatalf("expected cancelled state, got %+v", resp)
	}
	if len(repo.items) != 0 || len(store.objects) != 0 {
		t.Fatalf("cancellation must enqueue and upload nothing")
	}
}

func TestHTTP_Share_UnknownMode_400(t *testing.T) {
	router := newTestRouter(&storeStub{}, &repoStub{})

	body, ct := multipartBody(t, map[string]string{"mode": "banana", "text": "x"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/share", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d, body=%s", rr.Code, rr.Body.String())
	}
}

func TestHTTP_Share_EmptyForm_400(t *testing.T) {
	router := newTestRouter(&storeStub{}, &repoStub{})

	body, ct := multipartBody(t, map[string]string{"mode": "study"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/share", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d, body=%s", rr.Code, rr.Body.String())
	}
}

func TestHTTP_ListModes_Ordered(t *testing.T) {
	router := newTestRouter(&storeStub{}, &repoStub{})

	req := httptest.NewRequest(http.MethodGet, "/modes", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", rr.Code, rr.Body.String())
	}

	var modes []struct {
		Key   string `json:"key"`
		Label string `json:"label"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &modes); err != nil {
		t.Fatalf("invalid json: %v, body=%s", err, rr.Body.String())
	}

	want := []string{"study", "tech", "idea", "economy", "general"}
	if len(modes) != len(want) {
		t.Fatalf("expected %d modes, got %d", len(want), len(modes))
	}
	for i, m := range modes {
		if m.Key != want[i] {
			t.Fatalf("position %d: expected %q, got %q", i, want[i], m.Key)
		}
	}
}
