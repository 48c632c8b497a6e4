package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"crime-case-workers/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTx_Commit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE cases`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = WithTx(context.Background(), db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE cases SET workflow_stage = 'approved'`)
		return err
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_Rollback(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("transition rejected")
	err = WithTx(context.Background(), db, func(tx *sql.Tx) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisPing(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))
}

func TestNewRedis_MissingAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)
}

func TestIndexDocument(t *testing.T) {
	var gotPath, gotRefresh string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRefresh = r.URL.Query().Get("refresh")
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))
	defer server.Close()

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)

	client := &ElasticsearchClient{Client: es}
	err = client.IndexDocument(context.Background(), "cases", "CR-2024-001", map[string]interface{}{"title": "Burglary"})

	require.NoError(t, err)
	assert.Equal(t, "/cases/_doc/CR-2024-001", gotPath)
	assert.Equal(t, "wait_for", gotRefresh)
}

func newTestES(t *testing.T, handler http.HandlerFunc) *ElasticsearchClient {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return &ElasticsearchClient{Client: es}
}

func TestEnsureIndex_CreatesMapping(t *testing.T) {
	var created map[string]interface{}
	var methods []string

	client := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &created)
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		}
	})

	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"crime_type": map[string]interface{}{"type": "keyword"},
			},
		},
	}
	ok, err := client.EnsureIndex(context.Background(), "cases", mapping)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"HEAD /cases", "PUT /cases"}, methods)
	props := created["mappings"].(map[string]interface{})["properties"].(map[string]interface{})
	assert.Equal(t, "keyword", props["crime_type"].(map[string]interface{})["type"])
}

func TestEnsureIndex_ExistingIndexUntouched(t *testing.T) {
	var puts int
	client := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			puts++
		}
		w.WriteHeader(http.StatusOK)
	})

	ok, err := client.EnsureIndex(context.Background(), "cases", map[string]interface{}{})

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, puts)
}

func TestEnsureIndex_CreateRejected(t *testing.T) {
	client := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"mapper_parsing_exception"}}`))
	})

	_, err := client.EnsureIndex(context.Background(), "cases", map[string]interface{}{})
	assert.Error(t, err)
}
