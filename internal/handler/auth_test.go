package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/ejcalderongt/clinica/internal/auth"
	"github.com/ejcalderongt/clinica/internal/database"
	"github.com/ejcalderongt/clinica/internal/model"
	"github.com/ejcalderongt/clinica/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupAuthHandler(t *testing.T) (*AuthHandler, *store.NurseStore, *store.SessionStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	ns := store.NewNurseStore(db)
	ss := store.NewSessionStore(db)
	return NewAuthHandler(ns, ss, discardLogger()), ns, ss
}

func createAccount(t *testing.T, ns *store.NurseStore, codigo, clave string, admin, pending bool) *model.Nurse {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(clave), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	n, err := ns.Create(&model.Nurse{
		Codigo:             codigo,
		PasswordHash:       string(hash),
		Nombre:             "Prueba",
		Apellidos:          codigo,
		Turno:              "mañana",
		IsAdmin:            admin,
		Activo:             true,
		MustChangePassword: pending,
		FirstLogin:         pending,
	})
	if err != nil {
		t.Fatalf("create account %s: %v", codigo, err)
	}
	return n
}

func postJSON(t *testing.T, h http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestLoginSuccess(t *testing.T) {
	h, ns, ss := setupAuthHandler(t)
	createAccount(t, ns, "maria", "secreta1", false, false)

	rec := postJSON(t, h.Login, "/api/login", `{"codigo":"maria","clave":"secreta1"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Success             bool                 `json:"success"`
		RequiereCambioClave bool                 `json:"requiere_cambio_clave"`
		Enfermero           *model.PublicProfile `json:"enfermero"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false, want true")
	}
	if resp.RequiereCambioClave {
		t.Error("requiere_cambio_clave = true for account without pending change")
	}
	if resp.Enfermero == nil || resp.Enfermero.Codigo != "maria" {
		t.Errorf("enfermero = %+v, want codigo maria", resp.Enfermero)
	}

	cookie := sessionCookie(t, rec)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected session cookie on successful login")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	sess, err := ss.GetByToken(cookie.Value)
	if err != nil {
		t.Fatalf("lookup session: %v", err)
	}
	if sess == nil {
		t.Fatal("cookie token does not resolve to a stored session")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h, ns, _ := setupAuthHandler(t)
	createAccount(t, ns, "maria", "secreta1", false, false)

	rec := postJSON(t, h.Login, "/api/login", `{"codigo":"maria","clave":"equivocada"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if cookie := sessionCookie(t, rec); cookie != nil {
		t.Error("failed login must not set a session cookie")
	}
}

// Unknown codes, inactive accounts, and wrong passwords must be
// indistinguishable from the outside.
func TestLoginFailuresAreUniform(t *testing.T) {
	h, ns, _ := setupAuthHandler(t)
	createAccount(t, ns, "maria", "secreta1", false, false)
	inactive := createAccount(t, ns, "baja", "secreta1", false, false)
	if _, err := ns.Deactivate(inactive.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	bodies := map[string]string{
		"wrong password": `{"codigo":"maria","clave":"equivocada"}`,
		"unknown code":   `{"codigo":"nadie","clave":"secreta1"}`,
		"inactive":       `{"codigo":"baja","clave":"secreta1"}`,
	}

	var want string
	for name, body := range bodies {
		rec := postJSON(t, h.Login, "/api/login", body)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want %d", name, rec.Code, http.StatusUnauthorized)
		}
		if want == "" {
			want = rec.Body.String()
		} else if rec.Body.String() != want {
			t.Errorf("%s: body %q differs from %q", name, rec.Body.String(), want)
		}
	}
}

func TestLoginPendingChange(t *testing.T) {
	h, ns, _ := setupAuthHandler(t)
	createAccount(t, ns, "nuevo", "inicial1", false, true)

	rec := postJSON(t, h.Login, "/api/login", `{"codigo":"nuevo","clave":"inicial1"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Success             bool                 `json:"success"`
		RequiereCambioClave bool                 `json:"requiere_cambio_clave"`
		Enfermero           *model.PublicProfile `json:"enfermero"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || !resp.RequiereCambioClave {
		t.Errorf("got success=%v requiere_cambio_clave=%v, want both true", resp.Success, resp.RequiereCambioClave)
	}
	if cookie := sessionCookie(t, rec); cookie != nil {
		t.Error("pending-change login must not set a session cookie")
	}
}

// An administrator flagged for a change logs in normally; the forced flow
// never applies to the admin account.
func TestLoginAdminIgnoresPendingFlags(t *testing.T) {
	h, ns, _ := setupAuthHandler(t)
	createAccount(t, ns, "admin", "admin123", true, true)

	rec := postJSON(t, h.Login, "/api/login", `{"codigo":"admin","clave":"admin123"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if strings.Contains(rec.Body.String(), "requiere_cambio_clave") {
		t.Errorf("admin login reported a pending change: %s", rec.Body.String())
	}
	if sessionCookie(t, rec) == nil {
		t.Error("admin login did not set a session cookie")
	}
}

func TestChangePasswordFlow(t *testing.T) {
	h, ns, ss := setupAuthHandler(t)
	n := createAccount(t, ns, "nuevo", "inicial1", false, true)

	// Open sessions must die with the old credential.
	sess, err := ss.Create(n.ID, "{}")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	rec := postJSON(t, h.ChangePassword, "/api/cambiar-clave",
		`{"codigo":"nuevo","claveActual":"inicial1","nuevaClave":"definitiva1"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	// Old password no longer logs in.
	rec = postJSON(t, h.Login, "/api/login", `{"codigo":"nuevo","clave":"inicial1"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("old password login: status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	// New password logs in without the pending-change detour.
	rec = postJSON(t, h.Login, "/api/login", `{"codigo":"nuevo","clave":"definitiva1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("new password login: status = %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "requiere_cambio_clave") {
		t.Errorf("pending flags survived the password change: %s", rec.Body.String())
	}

	// The pre-change session is gone.
	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("lookup session: %v", err)
	}
	if got != nil {
		t.Error("session survived the password change")
	}
}

func TestChangePasswordDestroysSessions(t *testing.T) {
	h, ns, ss := setupAuthHandler(t)
	n := createAccount(t, ns, "maria", "secreta1", false, false)
	sess, err := ss.Create(n.ID, "{}")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	rec := postJSON(t, h.ChangePassword, "/api/cambiar-clave",
		`{"codigo":"maria","claveActual":"secreta1","nuevaClave":"renovada1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("lookup session: %v", err)
	}
	if got != nil {
		t.Error("session survived a password change")
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	h, ns, _ := setupAuthHandler(t)
	createAccount(t, ns, "maria", "secreta1", false, false)

	rec := postJSON(t, h.ChangePassword, "/api/cambiar-clave",
		`{"codigo":"maria","claveActual":"equivocada","nuevaClave":"renovada1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	// Credential unchanged.
	rec = postJSON(t, h.Login, "/api/login", `{"codigo":"maria","clave":"secreta1"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("original password stopped working: status = %d", rec.Code)
	}
}

func TestChangePasswordTooShort(t *testing.T) {
	h, ns, _ := setupAuthHandler(t)
	createAccount(t, ns, "maria", "secreta1", false, false)

	rec := postJSON(t, h.ChangePassword, "/api/cambiar-clave",
		`{"codigo":"maria","claveActual":"secreta1","nuevaClave":"corta"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "al menos 6") {
		t.Errorf("body = %s, want minimum-length message", rec.Body.String())
	}

	rec = postJSON(t, h.Login, "/api/login", `{"codigo":"maria","clave":"secreta1"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("rejected change must not touch the credential: status = %d", rec.Code)
	}
}

func TestChangePasswordUnknownCode(t *testing.T) {
	h, _, _ := setupAuthHandler(t)

	rec := postJSON(t, h.ChangePassword, "/api/cambiar-clave",
		`{"codigo":"nadie","claveActual":"x","nuevaClave":"renovada1"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestChangeOwnPassword(t *testing.T) {
	h, ns, ss := setupAuthHandler(t)
	n := createAccount(t, ns, "maria", "secreta1", false, false)
	sess, err := ss.Create(n.ID, "{}")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/cambiar-mi-clave",
		strings.NewReader(`{"claveActual":"secreta1","nuevaClave":"renovada1"}`))
	req = req.WithContext(auth.WithContext(req.Context(), auth.Context{
		NurseID: n.ID,
		Codigo:  n.Codigo,
		Token:   sess.Token,
	}))
	rec := httptest.NewRecorder()
	h.ChangeOwnPassword(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	// The caller's own cookie is expired in the response.
	cookie := sessionCookie(t, rec)
	if cookie == nil {
		t.Fatal("expected expired session cookie in response")
	}
	if cookie.MaxAge >= 0 || cookie.Value != "" {
		t.Errorf("cookie = (value %q, MaxAge %d), want cleared", cookie.Value, cookie.MaxAge)
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("lookup session: %v", err)
	}
	if got != nil {
		t.Error("session survived a self-service password change")
	}
}

func TestChangeOwnPasswordWithoutContext(t *testing.T) {
	h, _, _ := setupAuthHandler(t)

	rec := postJSON(t, h.ChangeOwnPassword, "/api/cambiar-mi-clave",
		`{"claveActual":"x","nuevaClave":"renovada1"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestLogout(t *testing.T) {
	h, ns, ss := setupAuthHandler(t)
	n := createAccount(t, ns, "maria", "secreta1", false, false)
	sess, err := ss.Create(n.ID, "{}")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/logout", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("lookup session: %v", err)
	}
	if got != nil {
		t.Error("session survived logout")
	}
}

func TestLogoutWithoutSession(t *testing.T) {
	h, _, _ := setupAuthHandler(t)

	rec := postJSON(t, h.Logout, "/api/logout", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestStatus(t *testing.T) {
	h, ns, ss := setupAuthHandler(t)
	n := createAccount(t, ns, "maria", "secreta1", false, false)
	sess, err := ss.Create(n.ID, "{}")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	// Without a cookie: anonymous, still 200.
	req := httptest.NewRequest("GET", "/api/status", nil)
	rec := httptest.NewRecorder()
	h.Status(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"authenticated":false`) {
		t.Errorf("anonymous body = %s", rec.Body.String())
	}

	// With a valid cookie: authenticated plus profile.
	req = httptest.NewRequest("GET", "/api/status", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: sess.Token})
	rec = httptest.NewRecorder()
	h.Status(rec, req)
	if !strings.Contains(rec.Body.String(), `"authenticated":true`) {
		t.Errorf("authenticated body = %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"codigo":"maria"`) {
		t.Errorf("authenticated body missing profile: %s", rec.Body.String())
	}

	// After the session is destroyed the same cookie reads as anonymous.
	if err := ss.DeleteByNurseID(n.ID); err != nil {
		t.Fatalf("delete sessions: %v", err)
	}
	rec = httptest.NewRecorder()
	h.Status(rec, req)
	if !strings.Contains(rec.Body.String(), `"authenticated":false`) {
		t.Errorf("stale-cookie body = %s", rec.Body.String())
	}
}
