package storage

import "os"

// SnapshotUsageBytes returns the combined size of snapshot artifacts.
// Missing paths contribute zero; snapshots may not have been written yet.
func SnapshotUsageBytes(paths ...string) int64 {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			total += info.Size()
		}
	}
	return total
}
