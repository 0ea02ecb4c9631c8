package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/rcliao/recoengine/internal/core"
)

func TestWriteErrorMapsStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"input", &core.InputError{Field: "limit", Reason: "bad"}, http.StatusBadRequest},
		{"not_found", &core.NotFoundError{Entity: "user_preference", ID: "u1"}, http.StatusNotFound},
		{"transient_store", &core.StoreError{Transient: true, Op: "x", Err: errors.New("conn")}, http.StatusServiceUnavailable},
		{"permanent_store", &core.StoreError{Transient: false, Op: "x", Err: errors.New("bad sql")}, http.StatusInternalServerError},
		{"optimization", &core.OptimizationError{Step: "cluster_discovery", Err: errors.New("fail")}, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			writeError(c, tc.err)

			if w.Code != tc.want {
				t.Fatalf("writeError(%v) status = %d, want %d", tc.err, w.Code, tc.want)
			}
		})
	}
}
