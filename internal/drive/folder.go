package drive

// FolderSize sums the sizes of every file item whose path is within
// folderPath, given a pre-fetched slice of items (typically the result
// of a recursive List scan). It takes the scan result as a plain
// argument rather than reaching back into a service or index, replacing
// the legacy cyclic DriveEvent<->DriveService reference described in the
// Design Notes.
func FolderSize(items []DriveItem, folderPath string) int64 {
	var total int64
	for _, item := range items {
		if item.IsFolder {
			continue
		}
		if !IsWithin(folderPath, item.Path) {
			continue
		}
		total += item.Size
	}
	return total
}
