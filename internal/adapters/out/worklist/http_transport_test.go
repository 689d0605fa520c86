package worklist_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	adapter "radiology/internal/adapters/out/worklist"
	"radiology/internal/core/domain/model/worklist"
	"radiology/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func descriptor() ports.StudyDescriptor {
	return ports.StudyDescriptor{
		StudyID:         "6f1c2b9e-4d0a-4c65-9d7e-0b3a1f2e5c71",
		OrderID:         "0d6a7c52-8f1e-4b2a-a3c4-5e6f7a8b9c0d",
		AccessionNumber: "0D6A7C528F1E4B2A",
		PatientID:       "a1b2c3d4-e5f6-4789-8abc-def012345678",
		Modality:        "CT",
		Priority:        "STAT",
		OrdererID:       "11111111-2222-4333-8444-555555555555",
		OrdererName:     "Dr. Order",
	}
}

type recordedRequest struct {
	method string
	path   string
	query  string
	body   map[string]any
}

func TestHTTPTransport_RoutesOperations(t *testing.T) {
	testCases := []struct {
		op     worklist.Operation
		method string
		path   string
		query  string
	}{
		{worklist.Save, http.MethodPost, "/worklists", ""},
		{worklist.Update, http.MethodPut, "/worklists/0D6A7C528F1E4B2A", ""},
		{worklist.Unvoid, http.MethodPut, "/worklists/0D6A7C528F1E4B2A", ""},
		{worklist.Undiscontinue, http.MethodPut, "/worklists/0D6A7C528F1E4B2A", ""},
		{worklist.Void, http.MethodDelete, "/worklists/0D6A7C528F1E4B2A", "reason=void"},
		{worklist.Discontinue, http.MethodDelete, "/worklists/0D6A7C528F1E4B2A", "reason=discontinue"},
	}

	for _, tc := range testCases {
		t.Run(tc.op.String(), func(t *testing.T) {
			requests := make(chan recordedRequest, 1)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var body map[string]any
				_ = json.NewDecoder(r.Body).Decode(&body)
				requests <- recordedRequest{r.Method, r.URL.Path, r.URL.RawQuery, body}
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			transport := adapter.NewHTTPTransport(server.URL+"/", time.Second, server.Client())
			result, err := transport.Send(t.Context(), tc.op, descriptor())
			require.NoError(t, err)
			assert.Equal(t, worklist.OutcomeOK, result.Outcome)

			got := <-requests
			assert.Equal(t, tc.method, got.method)
			assert.Equal(t, tc.path, got.path)
			assert.Equal(t, tc.query, got.query)
			assert.Equal(t, tc.op.String(), got.body["operation"])
			study, ok := got.body["study"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "0D6A7C528F1E4B2A", study["accessionNumber"])
			assert.Equal(t, "CT", study["modality"])
		})
	}
}

func TestHTTPTransport_SaveReturnsAssignedUID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"studyInstanceUid":"1.2.826.0.1.3680043.8.498.1"}`)
	}))
	defer server.Close()

	transport := adapter.NewHTTPTransport(server.URL, time.Second, nil)
	result, err := transport.Send(t.Context(), worklist.Save, descriptor())
	require.NoError(t, err)
	assert.Equal(t, worklist.OutcomeOK, result.Outcome)
	assert.Equal(t, "1.2.826.0.1.3680043.8.498.1", result.StudyInstanceUID)
}

func TestHTTPTransport_NonSuccessIsFailedWithReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, "accession already scheduled\n"+strings.Repeat("x", 1024))
	}))
	defer server.Close()

	transport := adapter.NewHTTPTransport(server.URL, time.Second, nil)
	result, err := transport.Send(t.Context(), worklist.Save, descriptor())
	require.NoError(t, err)
	assert.Equal(t, worklist.OutcomeFailed, result.Outcome)
	assert.Contains(t, result.Reason, "409")
	assert.Contains(t, result.Reason, "accession already scheduled")
	assert.Less(t, len(result.Reason), 320)
	assert.Empty(t, result.StudyInstanceUID)
}

func TestHTTPTransport_SlowGatewayTimesOut(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	defer close(release)

	transport := adapter.NewHTTPTransport(server.URL, 50*time.Millisecond, nil)
	result, err := transport.Send(t.Context(), worklist.Void, descriptor())
	require.NoError(t, err)
	assert.Equal(t, worklist.OutcomeTimeout, result.Outcome)
}

func TestHTTPTransport_UnreachableGatewayIsError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	transport := adapter.NewHTTPTransport(url, time.Second, nil)
	_, err := transport.Send(t.Context(), worklist.Update, descriptor())
	require.Error(t, err)
}

func TestHTTPTransport_RejectsUnknownOperationAndMissingAccession(t *testing.T) {
	transport := adapter.NewHTTPTransport("http://127.0.0.1:1", time.Second, nil)

	_, err := transport.Send(t.Context(), worklist.UnknownOperation, descriptor())
	require.Error(t, err)

	d := descriptor()
	d.AccessionNumber = ""
	_, err = transport.Send(t.Context(), worklist.Void, d)
	require.Error(t, err)
}
