package markdowncmd

import "testing"

func TestImportDirectoryCommandType(t *testing.T) {
	if got := (ImportDirectoryCommand{}).Type(); got != "press.markdown.import_directory" {
		t.Fatalf("unexpected message type %q", got)
	}
}

func TestImportDirectoryCommandValidate(t *testing.T) {
	cmd := ImportDirectoryCommand{Directory: "content/posts"}
	if err := cmd.Validate(); err != nil {
		t.Fatalf("expected valid command, got %v", err)
	}

	if err := (ImportDirectoryCommand{}).Validate(); err == nil {
		t.Fatal("expected validation error for missing directory")
	}
	if err := (ImportDirectoryCommand{Directory: "   "}).Validate(); err == nil {
		t.Fatal("expected validation error for blank directory")
	}
}

func TestSyncDirectoryCommandType(t *testing.T) {
	if got := (SyncDirectoryCommand{}).Type(); got != "press.markdown.sync_directory" {
		t.Fatalf("unexpected message type %q", got)
	}
}

func TestSyncDirectoryCommandValidate(t *testing.T) {
	cmd := SyncDirectoryCommand{Directory: "content"}
	if err := cmd.Validate(); err != nil {
		t.Fatalf("expected valid command, got %v", err)
	}

	if err := (SyncDirectoryCommand{}).Validate(); err == nil {
		t.Fatal("expected validation error for missing directory")
	}
}
