package ops

import (
	"context"
	"testing"
)

func TestList_HappyPath(t *testing.T) {
	database := openTestDB(t)

	var ids []string
	for _, name := range []string{"First", "Second", "Third"} {
		ids = append(ids, mustIngest(t, database, name+".zip", namedZip(t, name)))
	}

	output, err := List(context.Background(), database, ListInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(output.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(output.Items))
	}
	for i, id := range ids {
		if output.Items[i].ID != id {
			t.Errorf("Items[%d].ID = %q, want %q (ingestion order)", i, output.Items[i].ID, id)
		}
	}
	if output.Selected != ids[2] {
		t.Errorf("Selected = %q, want %q", output.Selected, ids[2])
	}
	if output.Items[0].Selected || !output.Items[2].Selected {
		t.Error("only the last ingested bundle should be flagged selected")
	}
	if output.Pagination.Total != 3 || output.Pagination.HasMore {
		t.Errorf("Pagination = %+v", output.Pagination)
	}
	if output.Sort != "ingested_asc" {
		t.Errorf("Sort = %q", output.Sort)
	}
}

func TestList_Pagination(t *testing.T) {
	database := openTestDB(t)
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		mustIngest(t, database, name+".zip", namedZip(t, name))
	}

	output, err := List(context.Background(), database, ListInput{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(output.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(output.Items))
	}
	if output.Items[0].Name != "C (800×600)" {
		t.Errorf("Items[0].Name = %q", output.Items[0].Name)
	}
	if !output.Pagination.HasMore || output.Pagination.Total != 5 {
		t.Errorf("Pagination = %+v", output.Pagination)
	}
}

func TestList_LimitBounds(t *testing.T) {
	database := openTestDB(t)

	output, err := List(context.Background(), database, ListInput{Limit: 1000, Offset: -3})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if output.Pagination.Limit != MaxListLimit || output.Pagination.Offset != 0 {
		t.Errorf("Pagination = %+v", output.Pagination)
	}
	if output.Items == nil {
		t.Error("Items should be an empty slice, not nil")
	}
}
