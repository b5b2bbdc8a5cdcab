package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/societyhq/societyd/internal/auth"
	"github.com/societyhq/societyd/internal/models"
	"github.com/societyhq/societyd/internal/storage"
)

type fakeAdmins struct {
	admins map[string]*models.Admin
}

func (f *fakeAdmins) GetAdmin(_ context.Context, adminID string) (*models.Admin, error) {
	admin, ok := f.admins[adminID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return admin, nil
}

func setupApp(t *testing.T) (*fiber.App, *auth.JWTManager, *fakeAdmins) {
	t.Helper()

	tokens := auth.NewJWTManager("test-secret-key-for-signing", time.Hour)
	admins := &fakeAdmins{admins: map[string]*models.Admin{}}

	app := fiber.New()
	app.Get("/read", RequireAuth(tokens), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"society": SocietyID(c)})
	})
	app.Post("/write", RequireAuth(tokens), RequireEditAccess(admins), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app, tokens, admins
}

func TestRequireAuth(t *testing.T) {
	app, tokens, _ := setupApp(t)

	req := httptest.NewRequest("GET", "/read", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/read", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("garbage token: status = %d, want 401", resp.StatusCode)
	}

	token, err := tokens.Generate(&models.Admin{ID: "a1", SocietyID: "green-meadows", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	req = httptest.NewRequest("GET", "/read", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("valid token: status = %d, want 200", resp.StatusCode)
	}
}

func TestRequireEditAccess(t *testing.T) {
	app, tokens, admins := setupApp(t)

	viewer := &models.Admin{ID: "viewer", SocietyID: "green-meadows", IsAuthorizedBySuperAdmin: true}
	editor := &models.Admin{ID: "editor", SocietyID: "green-meadows", IsAuthorizedBySuperAdmin: true, IsEditAccess: true}
	admins.admins[viewer.ID] = viewer
	admins.admins[editor.ID] = editor

	viewerToken, _ := tokens.Generate(viewer)
	req := httptest.NewRequest("POST", "/write", nil)
	req.Header.Set("Authorization", "Bearer "+viewerToken)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("viewer write: status = %d, want 403", resp.StatusCode)
	}

	editorToken, _ := tokens.Generate(editor)
	req = httptest.NewRequest("POST", "/write", nil)
	req.Header.Set("Authorization", "Bearer "+editorToken)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("editor write: status = %d, want 200", resp.StatusCode)
	}
}
