package fake_test

import (
	"context"
	"errors"
	"testing"

	tenantflow "github.com/tenantflow/tenantflow-go"
	"github.com/tenantflow/tenantflow-go/credstore"
	"github.com/tenantflow/tenantflow-go/fake"
)

func TestLoginIssuesTokens(t *testing.T) {
	user := &tenantflow.User{ID: "u-1", Email: "a@b.com", Role: tenantflow.RoleTenant}
	store := credstore.NewMemory()
	b := fake.New(store, fake.WithAccount("a@b.com", "secret1", user))

	token, got, err := b.Login(context.Background(),
		tenantflow.Credentials{Email: "a@b.com", Password: "secret1"}, tenantflow.RoleTenant)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != "tok-1" {
		t.Errorf("token = %q, want tok-1", token)
	}
	if got.ID != "u-1" {
		t.Errorf("user = %+v", got)
	}

	// Same email under the wrong role is a different account.
	_, _, err = b.Login(context.Background(),
		tenantflow.Credentials{Email: "a@b.com", Password: "secret1"}, tenantflow.RoleOwner)
	if !tenantflow.IsUnauthorized(err) {
		t.Errorf("owner login err = %v, want 401", err)
	}
}

func TestVerifyFollowsCredentialStore(t *testing.T) {
	user := &tenantflow.User{ID: "u-1", Role: tenantflow.RoleTenant}
	store := credstore.NewMemory()
	b := fake.New(store, fake.WithToken("persisted", user))

	if _, err := b.Verify(context.Background()); !tenantflow.IsUnauthorized(err) {
		t.Errorf("verify without credential = %v, want 401", err)
	}

	if err := store.Save("persisted"); err != nil {
		t.Fatal(err)
	}
	got, err := b.Verify(context.Background())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.ID != "u-1" {
		t.Errorf("user = %+v", got)
	}

	if err := store.Save("forged"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Verify(context.Background()); !tenantflow.IsUnauthorized(err) {
		t.Errorf("verify with unknown token = %v, want 401", err)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	user := &tenantflow.User{ID: "u-1", Role: tenantflow.RoleTenant}
	store := credstore.NewMemory()
	b := fake.New(store, fake.WithToken("persisted", user))
	if err := store.Save("persisted"); err != nil {
		t.Fatal(err)
	}

	if err := b.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := b.Verify(context.Background()); !tenantflow.IsUnauthorized(err) {
		t.Errorf("verify after logout = %v, want 401", err)
	}
}

func TestRegisterRecordsEmails(t *testing.T) {
	store := credstore.NewMemory()
	b := fake.New(store)

	err := b.RegisterOwner(context.Background(), tenantflow.OwnerRegistration{
		Fields: map[string]string{"email": "o@b.com"},
	})
	var apiErr *tenantflow.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 400 {
		t.Errorf("owner registration without documents = %v, want 400", err)
	}

	err = b.RegisterOwner(context.Background(), tenantflow.OwnerRegistration{
		Fields:    map[string]string{"email": "o@b.com"},
		Documents: []tenantflow.Document{{Filename: "deed.pdf", ContentType: "application/pdf", Data: []byte("x")}},
	})
	if err != nil {
		t.Fatalf("RegisterOwner: %v", err)
	}
	if err := b.Register(context.Background(), tenantflow.Registration{"email": "t@b.com"}, tenantflow.RoleTenant); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got := b.Registered()
	if len(got) != 2 || got[0] != "o@b.com" || got[1] != "t@b.com" {
		t.Errorf("Registered() = %v", got)
	}
}

func TestListPaginates(t *testing.T) {
	user := &tenantflow.User{ID: "u-1", Role: tenantflow.RoleTenant}
	var seed []tenantflow.Notification
	for _, id := range []string{"n-1", "n-2", "n-3", "n-4", "n-5"} {
		seed = append(seed, tenantflow.Notification{ID: id})
	}
	store := credstore.NewMemory()
	b := fake.New(store,
		fake.WithToken("tok", user),
		fake.WithNotifications("u-1", seed...),
	)
	if err := store.Save("tok"); err != nil {
		t.Fatal(err)
	}

	page1, err := b.List(context.Background(), tenantflow.ListOptions{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page1) != 2 || page1[0].ID != "n-1" {
		t.Errorf("page 1 = %v", page1)
	}
	page3, err := b.List(context.Background(), tenantflow.ListOptions{Page: 3, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page3) != 1 || page3[0].ID != "n-5" {
		t.Errorf("page 3 = %v", page3)
	}
	empty, err := b.List(context.Background(), tenantflow.ListOptions{Page: 4, Limit: 2})
	if err != nil || len(empty) != 0 {
		t.Errorf("page past the end = %v, %v", empty, err)
	}
}

func TestSendAndStats(t *testing.T) {
	user := &tenantflow.User{ID: "u-1", Role: tenantflow.RoleTenant}
	store := credstore.NewMemory()
	b := fake.New(store, fake.WithToken("tok", user))
	if err := store.Save("tok"); err != nil {
		t.Fatal(err)
	}

	if err := b.Send(context.Background(), "u-1", tenantflow.Notification{ID: "n-1", Title: "Hi"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := b.SendBulk(context.Background(), tenantflow.BulkNotification{
		UserIDs: []string{"u-1"}, Title: "Maintenance tonight",
	}); err != nil {
		t.Fatalf("SendBulk: %v", err)
	}
	if err := b.MarkRead(context.Background(), "n-1"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	stats, err := b.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 2 || stats.Unread != 1 {
		t.Errorf("stats = %+v, want total 2 unread 1", stats)
	}
}

func TestNewClientWiresEverything(t *testing.T) {
	client, backend := fake.NewClient()
	if client.Auth() == nil || client.Notifications() == nil || client.Profiles() == nil {
		t.Fatal("backends not wired")
	}
	if client.Credentials() == nil {
		t.Fatal("credential store not wired")
	}
	if backend == nil {
		t.Fatal("backend not returned")
	}
}
