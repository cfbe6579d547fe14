package rest

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	tenantflow "github.com/tenantflow/tenantflow-go"
)

// AuthAPI implements tenantflow.AuthBackend over HTTP.
type AuthAPI struct {
	t *Transport
}

// compile-time check
var _ tenantflow.AuthBackend = (*AuthAPI)(nil)

// loginResponse is the success envelope of the login endpoints.
type loginResponse struct {
	Token string           `json:"token"`
	User  *tenantflow.User `json:"user"`
}

// verifyResponse is the success envelope of GET /auth/verify.
type verifyResponse struct {
	User *tenantflow.User `json:"user"`
}

// Login posts credentials to the role-specific login endpoint.
func (a *AuthAPI) Login(ctx context.Context, creds tenantflow.Credentials, role tenantflow.Role) (string, *tenantflow.User, error) {
	if !role.Valid() {
		return "", nil, fmt.Errorf("rest: unknown role %q", role)
	}

	var resp loginResponse
	if err := a.t.doJSON(ctx, http.MethodPost, "/auth/login/"+string(role), creds, &resp); err != nil {
		return "", nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return "", nil, fmt.Errorf("rest: login response missing token or user")
	}
	return resp.Token, resp.User, nil
}

// Verify validates the attached bearer credential and returns its user.
func (a *AuthAPI) Verify(ctx context.Context) (*tenantflow.User, error) {
	var resp verifyResponse
	if err := a.t.doJSON(ctx, http.MethodGet, "/auth/verify", nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("rest: verify response missing user")
	}
	return resp.User, nil
}

// documentContentTypes are the accepted verification document formats.
var documentContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// RegisterOwner submits an owner sign-up as multipart/form-data: the
// plain fields plus the verification documents. Documents are validated
// client-side before any bytes go on the wire.
func (a *AuthAPI) RegisterOwner(ctx context.Context, reg tenantflow.OwnerRegistration) error {
	if len(reg.Documents) == 0 {
		return fmt.Errorf("rest: owner registration requires at least one verification document")
	}
	for _, doc := range reg.Documents {
		if len(doc.Data) > tenantflow.MaxDocumentSize {
			return fmt.Errorf("rest: document %q exceeds %d bytes", doc.Filename, tenantflow.MaxDocumentSize)
		}
		if !documentContentTypes[doc.ContentType] {
			return fmt.Errorf("rest: document %q has unsupported content type %q", doc.Filename, doc.ContentType)
		}
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range reg.Fields {
		if err := w.WriteField(key, value); err != nil {
			return fmt.Errorf("rest: write form field: %w", err)
		}
	}
	for _, doc := range reg.Documents {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="documents"; filename=%q`, doc.Filename))
		h.Set("Content-Type", doc.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return fmt.Errorf("rest: create document part: %w", err)
		}
		if _, err := part.Write(doc.Data); err != nil {
			return fmt.Errorf("rest: write document: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("rest: finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.t.baseURL+"/auth/register/owner", &buf)
	if err != nil {
		return fmt.Errorf("rest: create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return a.t.do(req, nil)
}

// Register submits a tenant or admin sign-up as JSON.
func (a *AuthAPI) Register(ctx context.Context, reg tenantflow.Registration, role tenantflow.Role) error {
	switch role {
	case tenantflow.RoleTenant, tenantflow.RoleAdmin:
	case tenantflow.RoleOwner:
		return fmt.Errorf("rest: owner registration requires RegisterOwner (multipart)")
	default:
		return fmt.Errorf("rest: unknown role %q", role)
	}
	return a.t.doJSON(ctx, http.MethodPost, "/auth/register/"+string(role), reg, nil)
}

// Logout invalidates the current session server-side.
func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.t.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
}
