package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kymawa/ratiba/core/user"
	testutil "github.com/kymawa/ratiba/tests"
)

func TestUserAPI(t *testing.T) {
	server := setup(t)

	body := marshallObj(t, map[string]interface{}{
		"name":  " Ada Lovelace ",
		"email": "ADA@Test.CD",
		"roles": []string{user.RoleStudent},
	})
	req, rec := newRequest(http.MethodPost, "/v1/users", body)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created user.User
	decodeBody(t, rec, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Ada Lovelace", created.Name)
	assert.Equal(t, "ada@test.cd", created.Email)
	assert.True(t, created.IsActive)

	// duplicate email
	req, rec = newRequest(http.MethodPost, "/v1/users", body)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "email")

	req, rec = newRequest(http.MethodGet, "/v1/users")
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var all []user.User
	decodeBody(t, rec, &all)
	assert.Len(t, all, 1)

	req, rec = newRequest(http.MethodGet, "/v1/users/"+created.ID)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req, rec = newRequest(http.MethodGet, "/v1/users/nope")
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestUserAPI_validation(t *testing.T) {
	server := setup(t)
	testutil.CreateUser(t, usrRepo, "Ada", "ada@test.cd", []string{user.RoleStudent}, "")

	body := marshallObj(t, map[string]interface{}{
		"name":  "Other",
		"email": "not-an-email",
	})
	req, rec := newRequest(http.MethodPost, "/v1/users", body)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "email")
}
