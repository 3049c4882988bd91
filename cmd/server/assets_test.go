package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebHandler(t *testing.T) {
	h, err := webHandler()
	require.NoError(t, err)

	cases := []struct {
		path        string
		contentType string
	}{
		{"/", "text/html"},
		{"/app.js", "javascript"},
		{"/gallow.gif", "image/gif"},
		{"/style.css", "text/css"},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, c.path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, c.path)
		assert.Contains(t, rec.Header().Get("Content-Type"), c.contentType, c.path)
	}
}

