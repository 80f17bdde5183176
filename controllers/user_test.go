package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterEndpoint(t *testing.T) {
	app := newTestApp(false)

	w := doJSON(t, app, http.MethodPost, "/api/auth/register",
		`{"email":"new@x.com","password":"secret","nickname":"newbie"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// the account can log in right away
	login := doJSON(t, app, http.MethodPost, "/api/auth/login",
		`{"email":"new@x.com","password":"secret"}`)
	assert.Equal(t, http.StatusOK, login.Code)
}

func TestRegisterEndpoint_DuplicateEmail(t *testing.T) {
	app := newTestApp(false)
	seedLocalUser(t, app, "a@x.com", "secret")

	w := doJSON(t, app, http.MethodPost, "/api/auth/register",
		`{"email":"a@x.com","password":"secret","nickname":"other"}`)
	assert.Equal(t, http.StatusNotAcceptable, w.Code)
}

func TestRegisterEndpoint_ValidationMessages(t *testing.T) {
	app := newTestApp(false)

	w := doJSON(t, app, http.MethodPost, "/api/auth/register",
		`{"email":"not-an-email","password":"secret","nickname":"n"}`)
	require.Equal(t, http.StatusNotAcceptable, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Please enter a valid email", body["message"])
}

func TestCheckNicknameEndpoint(t *testing.T) {
	app := newTestApp(false)
	seedLocalUser(t, app, "a@x.com", "secret") // nickname "tester"

	taken := doJSON(t, app, http.MethodGet, "/api/users/check-nickname?nickname=tester", "")
	require.Equal(t, http.StatusOK, taken.Code)
	assert.JSONEq(t, `{"taken":true}`, taken.Body.String())

	free := doJSON(t, app, http.MethodGet, "/api/users/check-nickname?nickname=unused", "")
	require.Equal(t, http.StatusOK, free.Code)
	assert.JSONEq(t, `{"taken":false}`, free.Body.String())
}

func TestMeEndpoint_RequiresAuth(t *testing.T) {
	app := newTestApp(false)

	w := doJSON(t, app, http.MethodGet, "/api/users/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
