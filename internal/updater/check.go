package updater

import "context"

// Check reports whether a newer release exists. A fresh cached result for
// the same current version is reused unless refresh is set. Cache read and
// write failures are ignored.
func (u *Updater) Check(ctx context.Context, refresh bool) (*Status, error) {
	if u.cacheDir != "" && !refresh {
		if st, err := LoadCache(u.cacheDir); err == nil && u.fresh(st) {
			return st, nil
		}
	}

	rel, err := u.Latest(ctx)
	if err != nil {
		return nil, err
	}
	available, err := IsUpdateAvailable(u.currentVersion, rel.Version)
	if err != nil {
		return nil, err
	}

	st := &Status{
		CurrentVersion:  u.currentVersion,
		Latest:          *rel,
		UpdateAvailable: available,
		CheckedAt:       u.now(),
	}
	if u.cacheDir != "" {
		_ = SaveCache(u.cacheDir, st)
	}
	return st, nil
}

func (u *Updater) fresh(st *Status) bool {
	if st == nil || st.CurrentVersion != u.currentVersion {
		return false
	}
	return u.now().Sub(st.CheckedAt) <= u.maxAge
}
