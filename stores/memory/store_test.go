package memory

import (
	"context"
	"testing"

	"designpad/core"
)

func TestNewStore(t *testing.T) {
	store := NewStore()
	if store == nil {
		t.Fatal("NewStore() returned nil")
	}
}

func TestCreate_Success(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	shared := &core.SharedDesign{Data: []byte("packed archive bytes")}
	id, err := store.Create(ctx, shared)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if id == "" {
		t.Error("Create() returned empty ID")
	}

	// Verify the ID is a valid ULID format (26 characters)
	if len(id) != 26 {
		t.Errorf("Create() returned invalid ID length: got %d, want 26", len(id))
	}
}

func TestFindID_RoundTrip(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	data := []byte("packed archive bytes")
	id, err := store.Create(ctx, &core.SharedDesign{Data: data})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	got, err := store.FindID(ctx, id)
	if err != nil {
		t.Fatalf("FindID() failed: %v", err)
	}
	if string(got.Data) != string(data) {
		t.Errorf("FindID() returned wrong data: got %q, want %q", got.Data, data)
	}
}

func TestFindID_NotFound(t *testing.T) {
	store := NewStore()
	if _, err := store.FindID(context.Background(), "no-such-id"); err == nil {
		t.Error("FindID() should fail for unknown ID")
	}
}

func TestSave_RequiresIDs(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.Save(ctx, &core.Design{ID: "d1"}); err == nil {
		t.Error("Save() should fail without a UserID")
	}
	if err := store.Save(ctx, &core.Design{UserID: "u1"}); err == nil {
		t.Error("Save() should fail without an ID")
	}
}

func TestSaveGetDelete(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	design := &core.Design{
		ID:     "d1",
		UserID: "u1",
		Name:   "My design",
		Data:   []byte("archive"),
	}
	if err := store.Save(ctx, design); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := store.Get(ctx, "u1", "d1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Name != "My design" {
		t.Errorf("Get() returned wrong name: got %q", got.Name)
	}
	if string(got.Data) != "archive" {
		t.Errorf("Get() returned wrong data: got %q", got.Data)
	}

	// Designs are scoped per user.
	if _, err := store.Get(ctx, "u2", "d1"); err == nil {
		t.Error("Get() should not return another user's design")
	}

	if err := store.Delete(ctx, "u1", "d1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := store.Get(ctx, "u1", "d1"); err == nil {
		t.Error("Get() should fail after Delete()")
	}
}

func TestList_OmitsArchiveData(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for _, id := range []string{"d1", "d2"} {
		design := &core.Design{ID: id, UserID: "u1", Name: id, Data: []byte("archive"), Thumbnail: "thumb"}
		if err := store.Save(ctx, design); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
	}

	designs, err := store.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(designs) != 2 {
		t.Fatalf("List() returned %d designs, want 2", len(designs))
	}
	for _, d := range designs {
		if d.Data != nil {
			t.Errorf("List() should not include archive data for %s", d.ID)
		}
		if d.Thumbnail == "" {
			t.Errorf("List() should include the thumbnail for %s", d.ID)
		}
	}
}

func TestList_EmptyUser(t *testing.T) {
	store := NewStore()
	designs, err := store.List(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if designs == nil || len(designs) != 0 {
		t.Errorf("List() for unknown user should return an empty slice, got %v", designs)
	}
}
