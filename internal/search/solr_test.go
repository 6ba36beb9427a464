package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewClient(server.URL, 2*time.Second, logger)
}

func TestGetProduct(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/select", r.URL.Path)
		assert.Equal(t, `id:"PROD00001"`, r.URL.Query().Get("q"))
		w.Write([]byte(`{"response":{"numFound":1,"docs":[
			{"id":"PROD00001","title":"BrandA Laptop","category":"Electronics","brand":"BrandA","popularity_score":0.8}
		]}}`))
	})

	p, err := client.GetProduct(context.Background(), "PROD00001")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "BrandA Laptop", p.Title)
	assert.Equal(t, 0.8, p.PopularityScore)
}

func TestGetProduct_NotFound(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{"numFound":0,"docs":[]}}`))
	})

	p, err := client.GetProduct(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestMoreLikeThis(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("mlt"))
		assert.Equal(t, "title,description,category,brand", q.Get("mlt.fl"))
		assert.Equal(t, "40", q.Get("rows"))
		w.Write([]byte(`{"response":{"numFound":1,"docs":[]},"moreLikeThis":{"PROD00001":{"docs":[
			{"id":"PROD00002","title":"BrandA Tablet","score":1.7},
			{"id":"PROD00003","title":"BrandB Laptop","score":0.9}
		]}}}`))
	})

	docs, err := client.MoreLikeThis(context.Background(), "PROD00001", 40)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "PROD00002", docs[0].ID)
	assert.Equal(t, 1.7, docs[0].Score)
}

func TestTopByCategory(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, `category:"Electronics" AND -id:"PROD00009"`, q.Get("fq"))
		assert.Equal(t, "popularity_score desc, rating desc", q.Get("sort"))
		w.Write([]byte(`{"response":{"numFound":1,"docs":[{"id":"PROD00004"}]}}`))
	})

	docs, err := client.TopByCategory(context.Background(), "Electronics", "PROD00009", 5)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "PROD00004", docs[0].ID)
}

func TestTrending_SortOrder(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "sales_last_30_days desc, popularity_score desc", q.Get("sort"))
		assert.Empty(t, q.Get("fq"))
		w.Write([]byte(`{"response":{"numFound":0,"docs":[]}}`))
	})

	_, err := client.Trending(context.Background(), "", 10)
	require.NoError(t, err)
}

func TestSelect_UpstreamError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.MoreLikeThis(context.Background(), "PROD00001", 10)
	require.Error(t, err)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "more_like_this", upstream.Op)
}
