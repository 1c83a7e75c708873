package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/receipt-engine/constants"
	"github.com/joseph-ayodele/receipt-engine/internal/entity"
	"github.com/joseph-ayodele/receipt-engine/internal/export"
	"github.com/joseph-ayodele/receipt-engine/internal/extract"
	"github.com/joseph-ayodele/receipt-engine/internal/pipeline"
	"github.com/joseph-ayodele/receipt-engine/internal/receipts"
	"github.com/joseph-ayodele/receipt-engine/internal/repository"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	db, err := repository.Open(ctx, repository.Config{Driver: "sqlite", DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewReceiptRepository(db, "sqlite", nil)
	processor := pipeline.NewProcessor(
		pipeline.Config{Backend: constants.BackendRules},
		map[constants.Backend]extract.Extractor{
			constants.BackendRules: extract.NewRulesExtractor(nil),
		},
		repo, nil, nil)
	svc := receipts.NewService(processor, repo, export.NewService(repo, nil), nil)

	ts := httptest.NewServer(NewServer(svc, db, nil).Router())
	t.Cleanup(ts.Close)
	return ts
}

const sampleReceipt = "Acme Mart\n01/15/2024\n2 x Coffee   8.00\nTax: 0.64\nTotal: 16.64"

func postText(t *testing.T, ts *httptest.Server, raw, filename string) entity.PipelineResult {
	t.Helper()
	body, err := json.Marshal(map[string]string{"raw_text": raw, "source_filename": filename})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/api/v1/receipts/text", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var res entity.PipelineResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func TestUploadTextAndList(t *testing.T) {
	ts := testServer(t)

	res := postText(t, ts, sampleReceipt, "acme.txt")
	assert.Equal(t, "Acme Mart", res.Receipt.Merchant)
	assert.True(t, res.Verdict.AllPassed())
	assert.False(t, res.NeedsReview)

	resp, err := http.Get(ts.URL + "/api/v1/receipts")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var recs []entity.StoredReceipt
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&recs))
	require.Len(t, recs, 1)
	assert.Equal(t, res.ReceiptID, recs[0].ID)
	assert.Equal(t, "acme.txt", recs[0].SourceFilename)
}

func TestUploadTextRequiresRawText(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Post(ts.URL+"/api/v1/receipts/text", "application/json",
		strings.NewReader(`{"raw_text":"  "}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadMultipartTxt(t *testing.T) {
	ts := testServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "acme.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte(sampleReceipt))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/api/v1/receipts", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var res entity.PipelineResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, "acme.txt", res.SourceFilename)
	assert.Equal(t, 16.64, res.Receipt.Total)
}

func TestUploadMultipartRejectsUnknownExtension(t *testing.T) {
	ts := testServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "receipt.exe")
	require.NoError(t, err)
	_, err = part.Write([]byte("nope"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/api/v1/receipts", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReceiptItemsAndDelete(t *testing.T) {
	ts := testServer(t)
	res := postText(t, ts, sampleReceipt, "acme.txt")

	resp, err := http.Get(ts.URL + "/api/v1/receipts/" + res.ReceiptID.String() + "/items")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []entity.LineItem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	_ = resp.Body.Close()
	assert.Equal(t, []entity.LineItem{{Name: "Coffee", Qty: 2, Price: 8.00}}, items)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/receipts/"+res.ReceiptID.String(), nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Deleting again is a 404.
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteRejectsMalformedID(t *testing.T) {
	ts := testServer(t)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/receipts/not-a-uuid", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClearReceipts(t *testing.T) {
	ts := testServer(t)
	postText(t, ts, sampleReceipt, "a.txt")
	postText(t, ts, sampleReceipt, "b.txt")

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/receipts", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Deleted int64 `json:"deleted"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, int64(2), out.Deleted)
}

func TestExportReceipts(t *testing.T) {
	ts := testServer(t)
	postText(t, ts, sampleReceipt, "acme.txt")

	resp, err := http.Get(ts.URL + "/api/v1/receipts/export")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	rows, err := wb.GetRows("Receipts")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme Mart", rows[1][1])
}

func TestHealthz(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
