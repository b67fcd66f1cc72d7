package drive

import "testing"

func TestFolderSize(t *testing.T) {
	items := []DriveItem{
		{Path: "/docs/a.txt", Size: 10},
		{Path: "/docs/sub/b.txt", Size: 20},
		{Path: "/docs", IsFolder: true},
		{Path: "/docs/sub", IsFolder: true},
		{Path: "/other/c.txt", Size: 999},
	}

	if got := FolderSize(items, "/docs"); got != 30 {
		t.Errorf("FolderSize(/docs) = %d, want 30", got)
	}
	if got := FolderSize(items, "/docs/sub"); got != 20 {
		t.Errorf("FolderSize(/docs/sub) = %d, want 20", got)
	}
	if got := FolderSize(items, "/empty"); got != 0 {
		t.Errorf("FolderSize(/empty) = %d, want 0", got)
	}
}
