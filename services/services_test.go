package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/VyacheslavBabenko/beejee/database"
	"github.com/VyacheslavBabenko/beejee/models"
	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret")

func newTestStore(t *testing.T) *database.Store {
	t.Helper()
	ctx := context.Background()
	st, err := database.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "services.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return st
}

func newAuth(t *testing.T) *AuthService {
	t.Helper()
	auth := NewAuthService(newTestStore(t), testSecret, 24*time.Hour)
	if _, err := auth.SeedAdmin(context.Background(), "admin", "123"); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}
	return auth
}

func kindOf(t *testing.T, err error) Kind {
	t.Helper()
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	return e.Kind
}

func strPtr(s string) *string { return &s }

func statusPtr(s models.TaskStatus) *models.TaskStatus { return &s }

func TestSeedAdmin_Idempotent(t *testing.T) {
	auth := newAuth(t)
	created, err := auth.SeedAdmin(context.Background(), "admin", "changed")
	if err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}
	if created {
		t.Fatalf("expected the existing admin to be kept")
	}
	if _, err := auth.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "123"}); err != nil {
		t.Fatalf("original password should still work: %v", err)
	}
}

func TestLogin_IssuesVerifiableToken(t *testing.T) {
	auth := newAuth(t)
	res, err := auth.Login(context.Background(), models.LoginRequest{Username: " admin ", Password: "123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("expected a token")
	}
	if res.User.Username != "admin" || res.User.Role != models.RoleAdmin {
		t.Fatalf("unexpected user: %+v", res.User)
	}

	claims, err := auth.Verify(res.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !claims.IsAdmin() || claims.ID != res.User.ID {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != 24*time.Hour {
		t.Fatalf("expected 24h token, got %s", ttl)
	}
}

func TestLogin_Failures(t *testing.T) {
	auth := newAuth(t)
	ctx := context.Background()

	if _, err := auth.Login(ctx, models.LoginRequest{Username: "admin", Password: "wrong"}); kindOf(t, err) != KindUnauthorized {
		t.Fatalf("wrong password should be unauthorized")
	}
	if _, err := auth.Login(ctx, models.LoginRequest{Username: "nobody", Password: "123"}); kindOf(t, err) != KindUnauthorized {
		t.Fatalf("unknown user should be unauthorized")
	}

	_, err := auth.Login(ctx, models.LoginRequest{Username: "  ", Password: ""})
	if kindOf(t, err) != KindValidation {
		t.Fatalf("empty credentials should fail validation")
	}
	var e *Error
	errors.As(err, &e)
	if len(e.Fields) != 2 {
		t.Fatalf("expected two field errors, got %+v", e.Fields)
	}
}

func TestVerify_ExpiredAndInvalid(t *testing.T) {
	auth := newAuth(t)
	auth.now = func() time.Time { return time.Now().Add(-25 * time.Hour) }
	res, err := auth.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	auth.now = time.Now

	_, err = auth.Verify(res.Token)
	if !errors.Is(err, ErrTokenExpired) || kindOf(t, err) != KindUnauthorized {
		t.Fatalf("expected expired token error, got %v", err)
	}

	_, err = auth.Verify("not-a-token")
	if !errors.Is(err, ErrTokenInvalid) || kindOf(t, err) != KindUnauthorized {
		t.Fatalf("expected invalid token error, got %v", err)
	}

	other := NewAuthService(nil, []byte("other-secret"), time.Hour)
	forged, _, err := other.issue(&models.Admin{ID: 1, Username: "admin"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := auth.Verify(forged); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected signature mismatch to be invalid, got %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &models.Claims{Role: models.RoleAdmin})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	if _, err := auth.Verify(unsigned); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected unsigned token to be rejected, got %v", err)
	}
}

func TestCreate_SanitizesAndDefaults(t *testing.T) {
	svc := NewTaskService(newTestStore(t))
	task, err := svc.Create(context.Background(), models.CreateTaskRequest{
		Username: "  <b>Alice</b> ",
		Email:    " Alice@Example.COM ",
		Text:     "<script>alert(1)</script>buy milk",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.Username != "Alice" || task.Email != "alice@example.com" || task.Text != "buy milk" {
		t.Fatalf("unexpected sanitized fields: %+v", task)
	}
	if task.Status != models.StatusPending || task.IsEditedByAdmin {
		t.Fatalf("new task must be pending and unedited: %+v", task)
	}
}

func TestCreate_EscapingMayExceedInputLimit(t *testing.T) {
	svc := NewTaskService(newTestStore(t))
	name := strings.Repeat("&", 100)
	task, err := svc.Create(context.Background(), models.CreateTaskRequest{
		Username: name,
		Email:    "amp@example.com",
		Text:     "escaped name",
	})
	if err != nil {
		t.Fatalf("Create with a 100 character username: %v", err)
	}
	if task.Username != strings.Repeat("&amp;", 100) {
		t.Fatalf("unexpected stored username %q", task.Username)
	}
	stored, err := svc.Get(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Username != task.Username {
		t.Fatalf("stored username was truncated: %d bytes", len(stored.Username))
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewTaskService(newTestStore(t))
	long := make([]byte, 1001)
	for i := range long {
		long[i] = 'a'
	}

	cases := map[string]models.CreateTaskRequest{
		"missing username": {Email: "a@b.co", Text: "x"},
		"bad email":        {Username: "a", Email: "not-an-email", Text: "x"},
		"long text":        {Username: "a", Email: "a@b.co", Text: string(long)},
		"markup only":      {Username: "a", Email: "a@b.co", Text: "<img src=x>"},
	}
	for name, req := range cases {
		if _, err := svc.Create(context.Background(), req); kindOf(t, err) != KindValidation {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestList_Pagination(t *testing.T) {
	svc := NewTaskService(newTestStore(t))
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		req := models.CreateTaskRequest{Username: fmt.Sprintf("u%d", i), Email: "u@example.com", Text: "task"}
		if _, err := svc.Create(ctx, req); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	p := DefaultListParams()
	p.Page = 2
	page, err := svc.List(ctx, p)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(page.Tasks))
	}
	want := models.Pagination{CurrentPage: 2, TotalPages: 3, TotalTasks: 7, Limit: 3}
	if page.Pagination != want {
		t.Fatalf("unexpected pagination: %+v", page.Pagination)
	}
	if page.Tasks[0].Username != "u3" {
		t.Fatalf("expected newest-first order, got %s first", page.Tasks[0].Username)
	}

	bad := []ListParams{
		{Page: 0, Limit: 3, SortBy: "created_at", SortOrder: "desc"},
		{Page: 1, Limit: 11, SortBy: "created_at", SortOrder: "desc"},
		{Page: 1, Limit: 3, SortBy: "text", SortOrder: "desc"},
		{Page: 1, Limit: 3, SortBy: "created_at", SortOrder: "up"},
	}
	for _, p := range bad {
		if _, err := svc.List(ctx, p); kindOf(t, err) != KindValidation {
			t.Fatalf("%+v: expected validation error, got %v", p, err)
		}
	}
}

func TestList_Empty(t *testing.T) {
	svc := NewTaskService(newTestStore(t))
	page, err := svc.List(context.Background(), DefaultListParams())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Tasks == nil || len(page.Tasks) != 0 || page.Pagination.TotalPages != 0 {
		t.Fatalf("unexpected empty page: %+v", page)
	}
}

func TestUpdate_Semantics(t *testing.T) {
	svc := NewTaskService(newTestStore(t))
	ctx := context.Background()
	task, err := svc.Create(ctx, models.CreateTaskRequest{Username: "bob", Email: "bob@example.com", Text: "a < b"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Status only.
	if err := svc.Update(ctx, task.ID, models.UpdateTaskRequest{Status: statusPtr(models.StatusCompleted)}); err != nil {
		t.Fatalf("Update status: %v", err)
	}
	got, _ := svc.Get(ctx, task.ID)
	if got.Status != models.StatusCompleted || got.Text != task.Text || got.IsEditedByAdmin {
		t.Fatalf("status-only update touched other fields: %+v", got)
	}

	// Same text, submitted raw or as stored, is not an edit.
	if err := svc.Update(ctx, task.ID, models.UpdateTaskRequest{Text: strPtr("a < b")}); err != nil {
		t.Fatalf("Update same text: %v", err)
	}
	if err := svc.Update(ctx, task.ID, models.UpdateTaskRequest{Text: strPtr(got.Text)}); err != nil {
		t.Fatalf("Update stored text: %v", err)
	}
	got, _ = svc.Get(ctx, task.ID)
	if got.IsEditedByAdmin {
		t.Fatalf("unchanged text must not set the edited flag")
	}
	if !got.UpdatedAt.After(task.UpdatedAt) {
		t.Fatalf("updated_at should be refreshed on every update")
	}

	// A real edit raises the flag and it stays raised.
	if err := svc.Update(ctx, task.ID, models.UpdateTaskRequest{Text: strPtr("new text")}); err != nil {
		t.Fatalf("Update text: %v", err)
	}
	if err := svc.Update(ctx, task.ID, models.UpdateTaskRequest{Status: statusPtr(models.StatusPending)}); err != nil {
		t.Fatalf("Update status back: %v", err)
	}
	got, _ = svc.Get(ctx, task.ID)
	if got.Text != "new text" || !got.IsEditedByAdmin || got.Status != models.StatusPending {
		t.Fatalf("unexpected task after edit: %+v", got)
	}
}

func TestUpdate_Errors(t *testing.T) {
	svc := NewTaskService(newTestStore(t))
	ctx := context.Background()

	if err := svc.Update(ctx, 42, models.UpdateTaskRequest{Text: strPtr("x")}); kindOf(t, err) != KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.Update(ctx, 42, models.UpdateTaskRequest{Status: statusPtr("archived")}); kindOf(t, err) != KindValidation {
		t.Fatalf("expected validation error for bad status, got %v", err)
	}
	if err := svc.Update(ctx, 42, models.UpdateTaskRequest{Text: strPtr("   ")}); kindOf(t, err) != KindValidation {
		t.Fatalf("expected validation error for blank text, got %v", err)
	}
	if _, err := svc.Get(ctx, 42); kindOf(t, err) != KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestError_Status(t *testing.T) {
	cases := map[*Error]int{
		ValidationError("v"):     400,
		Unauthorized("u", nil):   401,
		Forbidden("f"):           403,
		NotFound("n"):            404,
		Internal("i", nil):       500,
		AsError(errors.New("x")): 500,
	}
	for e, want := range cases {
		if e.Status() != want {
			t.Fatalf("%s: expected %d, got %d", e.Message, want, e.Status())
		}
	}
}
