package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lammesen/netrust/drivers"
	"github.com/lammesen/netrust/model"
)

type fakeResolver struct{ cred model.Credential }

func (f fakeResolver) Store(context.Context, model.CredentialRef, model.Credential) error { return nil }
func (f fakeResolver) Resolve(context.Context, model.CredentialRef) (model.Credential, error) {
	return f.cred, nil
}

func TestNXOSExecuteCommandBatchSuccess(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req nxosRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, []string{"show version"}, req.Commands)
		json.NewEncoder(w).Encode(nxosEnvelope{Success: true, Result: []string{"NX-OS 9.x"}})
	}))
	defer srv.Close()

	d := NewNXOS(fakeResolver{cred: model.Credential{Kind: model.CredentialUserPassword, Username: "admin", Password: "x"}}, nil)
	d.client.HTTPClient = srv.Client()

	addr := srv.Listener.Addr().String()
	res, err := d.Execute(context.Background(), model.Device{ID: "n1", MgmtAddr: addr}, drivers.JobAction{
		Kind: model.JobKind{Type: model.JobKindCommandBatch, Commands: []string{"show version"}},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"NX-OS 9.x"}, res.Logs)
}

func TestNXOSExecuteRejectsNonSuccessEnvelope(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(nxosEnvelope{Success: false, Error: "syntax error"})
	}))
	defer srv.Close()

	d := NewNXOS(fakeResolver{cred: model.Credential{Kind: model.CredentialUserPassword, Username: "admin", Password: "x"}}, nil)
	d.client.HTTPClient = srv.Client()
	d.client.RetryMax = 0

	addr := srv.Listener.Addr().String()
	_, err := d.Execute(context.Background(), model.Device{ID: "n1", MgmtAddr: addr}, drivers.JobAction{
		Kind: model.JobKind{Type: model.JobKindCommandBatch, Commands: []string{"bogus"}},
	})
	require.ErrorContains(t, err, "syntax error")
}

func TestNXOSExecuteRejectsNon2xxWithoutRetry(t *testing.T) {
	attempts := 0
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`boom`))
	}))
	defer srv.Close()

	d := NewNXOS(fakeResolver{cred: model.Credential{Kind: model.CredentialUserPassword, Username: "admin", Password: "x"}}, nil)
	d.client.HTTPClient = srv.Client()
	d.client.RetryMax = 2

	addr := srv.Listener.Addr().String()
	_, err := d.Execute(context.Background(), model.Device{ID: "n1", MgmtAddr: addr}, drivers.JobAction{
		Kind: model.JobKind{Type: model.JobKindCommandBatch, Commands: []string{"show version"}},
	})
	require.Error(t, err)
	require.Equal(t, 1, attempts, "non-2xx status is terminal, must not retry")
}
