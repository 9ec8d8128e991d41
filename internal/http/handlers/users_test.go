package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/imaging"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/gin-gonic/gin"
)

type fakeAccounts struct {
	signUpFn    func(ctx context.Context, req user.CreateUserRequest) (service.Session, error)
	loginFn     func(ctx context.Context, req user.LoginRequest) (service.Session, error)
	logoutFn    func(ctx context.Context, userID, token string) error
	logoutAllFn func(ctx context.Context, userID string) error
	updateFn    func(ctx context.Context, userID string, changes user.Changes) (user.User, error)
	deleteFn    func(ctx context.Context, u user.User) (user.User, error)
	setAvatarFn func(ctx context.Context, userID string, png []byte) error
	avatarFn    func(ctx context.Context, userID string) ([]byte, error)
}

func (f *fakeAccounts) SignUp(ctx context.Context, req user.CreateUserRequest) (service.Session, error) {
	return f.signUpFn(ctx, req)
}
func (f *fakeAccounts) Login(ctx context.Context, req user.LoginRequest) (service.Session, error) {
	return f.loginFn(ctx, req)
}
func (f *fakeAccounts) Logout(ctx context.Context, userID, token string) error {
	if f.logoutFn == nil {
		return nil
	}
	return f.logoutFn(ctx, userID, token)
}
func (f *fakeAccounts) LogoutAll(ctx context.Context, userID string) error {
	if f.logoutAllFn == nil {
		return nil
	}
	return f.logoutAllFn(ctx, userID)
}
func (f *fakeAccounts) Update(ctx context.Context, userID string, changes user.Changes) (user.User, error) {
	return f.updateFn(ctx, userID, changes)
}
func (f *fakeAccounts) Delete(ctx context.Context, u user.User) (user.User, error) {
	return f.deleteFn(ctx, u)
}
func (f *fakeAccounts) SetAvatar(ctx context.Context, userID string, png []byte) error {
	if f.setAvatarFn == nil {
		return nil
	}
	return f.setAvatarFn(ctx, userID, png)
}
func (f *fakeAccounts) ClearAvatar(ctx context.Context, userID string) error {
	return f.SetAvatar(ctx, userID, nil)
}
func (f *fakeAccounts) Avatar(ctx context.Context, userID string) ([]byte, error) {
	return f.avatarFn(ctx, userID)
}

func TestSignUpHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		signUpFn   func(ctx context.Context, req user.CreateUserRequest) (service.Session, error)
		wantStatus int
	}{
		{
			name: "created",
			body: `{"name":"Ann","email":"ann@example.com","password":"MyPass777!"}`,
			signUpFn: func(_ context.Context, req user.CreateUserRequest) (service.Session, error) {
				return service.Session{User: user.User{ID: "u1", Name: req.Name, Email: req.Email, Password: "hash", Tokens: []string{"t"}}, Token: "t"}, nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "short password",
			body:       `{"name":"Ann","email":"ann@example.com","password":"abc"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "email taken",
			body: `{"name":"Ann","email":"ann@example.com","password":"MyPass777!"}`,
			signUpFn: func(context.Context, user.CreateUserRequest) (service.Session, error) {
				return service.Session{}, user.ErrEmailTaken
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewUsersHandler(&fakeAccounts{signUpFn: tt.signUpFn})
			r := gin.New()
			r.POST("/users", h.SignUp)

			w := do(r, http.MethodPost, "/users", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("got %d want %d body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				return
			}

			body := w.Body.String()
			for _, secret := range []string{"hash", "tokens", "password", "avatar"} {
				if strings.Contains(body, `"`+secret) {
					t.Fatalf("response leaks %q: %s", secret, body)
				}
			}
			var resp struct {
				User  map[string]any `json:"user"`
				Token string         `json:"token"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.Token != "t" || resp.User["id"] != "u1" {
				t.Fatalf("unexpected response %s", body)
			}
		})
	}
}

func TestLoginHandler_FailuresAreBare400(t *testing.T) {
	for _, err := range []error{service.ErrInvalidCredentials, errors.New("db down")} {
		h := handlers.NewUsersHandler(&fakeAccounts{loginFn: func(context.Context, user.LoginRequest) (service.Session, error) {
			return service.Session{}, err
		}})
		r := gin.New()
		r.POST("/users/login", h.Login)

		w := do(r, http.MethodPost, "/users/login", `{"email":"a@b.c","password":"x"}`)
		if w.Code != http.StatusBadRequest || w.Body.Len() != 0 {
			t.Fatalf("expected empty 400 for %v, got %d %s", err, w.Code, w.Body.String())
		}
	}
}

func TestLogoutHandler_RevokesRequestToken(t *testing.T) {
	var gotUser, gotToken string
	h := handlers.NewUsersHandler(&fakeAccounts{logoutFn: func(_ context.Context, userID, token string) error {
		gotUser, gotToken = userID, token
		return nil
	}})
	r := setupRouter(http.MethodPost, "/users/logout", h.Logout)

	w := do(r, http.MethodPost, "/users/logout", "")
	if w.Code != http.StatusOK || w.Body.Len() != 0 {
		t.Fatalf("expected empty 200, got %d %s", w.Code, w.Body.String())
	}
	if gotUser != callerID || gotToken != "tok" {
		t.Fatalf("unexpected revoke call %q %q", gotUser, gotToken)
	}
}

func TestUpdateMeHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCalled bool
	}{
		{"name change", `{"name":"Annie"}`, http.StatusOK, true},
		{"disallowed key", `{"name":"Annie","location":"Philadelphia"}`, http.StatusBadRequest, false},
		{"bad email", `{"email":"nope"}`, http.StatusBadRequest, false},
		{"forbidden password", `{"password":"myPASSWORD1"}`, http.StatusBadRequest, false},
		{"negative age", `{"age":-3}`, http.StatusBadRequest, false},
		{"fractional age", `{"age":30.5}`, http.StatusOK, true},
		{"null name", `{"name":null}`, http.StatusBadRequest, false},
		{"null age", `{"age":null}`, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := handlers.NewUsersHandler(&fakeAccounts{updateFn: func(_ context.Context, id string, ch user.Changes) (user.User, error) {
				called = true
				u := user.User{ID: id, Name: "Ann"}
				if ch.Name != nil {
					u.Name = *ch.Name
				}
				return u, nil
			}})
			r := setupRouter(http.MethodPatch, "/users/me", h.UpdateMe)

			w := do(r, http.MethodPatch, "/users/me", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("got %d want %d body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if called != tt.wantCalled {
				t.Fatalf("update called=%v, want %v", called, tt.wantCalled)
			}
		})
	}
}

func TestDeleteMeHandler(t *testing.T) {
	h := handlers.NewUsersHandler(&fakeAccounts{deleteFn: func(_ context.Context, u user.User) (user.User, error) {
		return u, nil
	}})
	r := setupRouter(http.MethodDelete, "/users/me", h.DeleteMe)

	w := do(r, http.MethodDelete, "/users/me", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["id"] != callerID || body["email"] != "ann@example.com" {
		t.Fatalf("unexpected body %v", body)
	}
}

func multipartUpload(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/users/me/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 20))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestUploadAvatarHandler(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		filename   string
		content    []byte
		wantStatus int
		wantError  string
	}{
		{"png", "avatar", "me.png", nil, http.StatusOK, ""},
		{"pdf", "avatar", "cv.pdf", []byte("%PDF"), http.StatusBadRequest, "Please upload an image"},
		{"too large", "avatar", "big.jpg", bytes.Repeat([]byte{1}, imaging.MaxUploadBytes+1), http.StatusBadRequest, "File too large"},
		{"wrong field", "picture", "me.png", nil, http.StatusBadRequest, "Please upload an image"},
		{"not really an image", "avatar", "me.png", []byte("hello"), http.StatusBadRequest, "Please upload an image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stored []byte
			h := handlers.NewUsersHandler(&fakeAccounts{setAvatarFn: func(_ context.Context, _ string, png []byte) error {
				stored = png
				return nil
			}})
			r := setupRouter(http.MethodPost, "/users/me/avatar", h.UploadAvatar)

			content := tt.content
			if content == nil {
				content = tinyPNG(t)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, multipartUpload(t, tt.field, tt.filename, content))

			if w.Code != tt.wantStatus {
				t.Fatalf("got %d want %d body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantError != "" {
				var body map[string]string
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("unmarshal: %v body=%s", err, w.Body.String())
				}
				if body["error"] != tt.wantError {
					t.Fatalf("got error %q want %q", body["error"], tt.wantError)
				}
				return
			}

			img, format, err := image.Decode(bytes.NewReader(stored))
			if err != nil {
				t.Fatalf("stored avatar is not an image: %v", err)
			}
			if format != "png" || img.Bounds().Dx() != imaging.AvatarSize || img.Bounds().Dy() != imaging.AvatarSize {
				t.Fatalf("unexpected stored avatar %s %v", format, img.Bounds())
			}
		})
	}
}

func TestGetAvatarHandler(t *testing.T) {
	h := handlers.NewUsersHandler(&fakeAccounts{avatarFn: func(_ context.Context, id string) ([]byte, error) {
		switch id {
		case "with":
			return []byte("png-bytes"), nil
		case "without":
			return nil, user.ErrNoAvatar
		default:
			return nil, user.ErrNotFound
		}
	}})
	r := gin.New()
	r.GET("/users/:id/avatar", h.GetAvatar)

	w := do(r, http.MethodGet, "/users/with/avatar", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if w.Body.String() != "png-bytes" {
		t.Fatalf("unexpected body %q", w.Body.String())
	}

	for _, id := range []string{"without", "missing"} {
		w := do(r, http.MethodGet, "/users/"+id+"/avatar", "")
		if w.Code != http.StatusBadRequest || w.Body.Len() != 0 {
			t.Fatalf("%s: expected empty 400, got %d %s", id, w.Code, w.Body.String())
		}
	}
}

func TestUploadAvatarHandler_RejectsHugeCanvas(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 6000, 6000))); err != nil {
		t.Fatalf("encode: %v", err)
	}

	called := false
	h := handlers.NewUsersHandler(&fakeAccounts{setAvatarFn: func(context.Context, string, []byte) error {
		called = true
		return nil
	}})
	r := setupRouter(http.MethodPost, "/users/me/avatar", h.UploadAvatar)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartUpload(t, "avatar", "wide.png", buf.Bytes()))

	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "File too large") {
		t.Fatalf("expected 400 File too large, got %d %s", w.Code, w.Body.String())
	}
	if called {
		t.Fatalf("oversized canvas must not be stored")
	}
}
