package ra

import (
	baseerr "github.com/utkarsh5026/gosvn/pkg/common/err"
)

const pkgName = "ra"

const (
	CodeUnknownScheme = "UNKNOWN_SCHEME"
	CodeNoSuchRepo    = "NO_SUCH_REPO"
)

// ErrUnknownScheme is returned when Registry.Open sees a URL scheme no
// registered Plugin claims.
func ErrUnknownScheme(scheme, rawURL string) error {
	return baseerr.New(pkgName, CodeUnknownScheme, "open", scheme+": no ra plugin registered for "+rawURL, nil)
}

// ErrNoSuchRepo is returned by the local plugin when its session is
// opened against a path no Repository has been registered under.
func ErrNoSuchRepo(path string) error {
	return baseerr.New(pkgName, CodeNoSuchRepo, "open", "no repository registered at "+path, nil)
}

// IsUnknownScheme reports whether err is an ErrUnknownScheme.
func IsUnknownScheme(err error) bool {
	return baseerr.IsCode(err, CodeUnknownScheme)
}

// IsNoSuchRepo reports whether err is an ErrNoSuchRepo.
func IsNoSuchRepo(err error) bool {
	return baseerr.IsCode(err, CodeNoSuchRepo)
}
