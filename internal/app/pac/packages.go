package pac

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/PlanktoScope/pac/internal/clients/git"
)

// DefaultCategory is the category of packages installed without an explicit category.
const DefaultCategory = "default"

const (
	startDirName = "start"
	optDirName   = "opt"
)

// A Package is a plugin tracked in the package set.
type Package struct {
	// IDName is the stable identity of the package, derived from its remote.
	IDName string `yaml:"idname"`
	// Name is the name of the package's directory.
	Name string `yaml:"name"`
	// Remote is the address the package is fetched from; it's empty for local plugins.
	Remote string `yaml:"remote,omitempty"`
	// Reference pins the package to a branch, tag, or commit; if it's nil, the remote's default
	// branch is used.
	Reference *git.Reference `yaml:"reference,omitempty"`
	// Category is the logical group the package is installed under.
	Category string `yaml:"category"`
	// Opt is whether the package is loaded on demand rather than at startup.
	Opt bool `yaml:"opt,omitempty"`
	// ForTypes is the list of file types for which an opt package is loaded.
	ForTypes []string `yaml:"for,omitempty"`
	// LoadCommand is a command which loads an opt package when it's first run.
	LoadCommand string `yaml:"on,omitempty"`
	// BuildCommand is run in the package's directory after the package is installed.
	BuildCommand string `yaml:"build,omitempty"`
}

// NewPackage makes a package from a remote address (or GitHub shorthand), with the name defaulting
// to the last path segment of the remote.
func NewPackage(remoteArg string) Package {
	remote := RemoteFromArg(remoteArg)
	return Package{
		IDName:   IDNameFromRemote(remote),
		Name:     DefaultName(remote),
		Remote:   remote,
		Category: DefaultCategory,
	}
}

// RemoteFromArg expands GitHub shorthand (owner/repo) into an https address; full addresses are
// returned unchanged.
func RemoteFromArg(arg string) string {
	if strings.Contains(arg, "://") || isSCPLike(arg) {
		return arg
	}
	return "https://github.com/" + strings.TrimPrefix(arg, "/")
}

// IDNameFromRemote makes the identity of a package from its remote address: the lower-cased host
// followed by the path, without scheme, user info, port, trailing slash, or ".git" suffix.
func IDNameFromRemote(remote string) string {
	host, repoPath := splitRemote(remote)
	repoPath = strings.Trim(repoPath, "/")
	repoPath = strings.TrimSuffix(repoPath, ".git")
	if host == "" {
		return repoPath
	}
	return path.Join(strings.ToLower(host), repoPath)
}

// DefaultName returns the last path segment of the remote, without any ".git" suffix.
func DefaultName(remote string) string {
	_, repoPath := splitRemote(remote)
	repoPath = strings.TrimSuffix(strings.TrimRight(repoPath, "/"), ".git")
	return path.Base(repoPath)
}

func isSCPLike(remote string) bool {
	user, rest, ok := strings.Cut(remote, "@")
	if !ok || strings.Contains(user, "/") {
		return false
	}
	host, _, ok := strings.Cut(rest, ":")
	return ok && !strings.Contains(host, "/")
}

func splitRemote(remote string) (host, repoPath string) {
	if isSCPLike(remote) {
		_, rest, _ := strings.Cut(remote, "@")
		host, repoPath, _ = strings.Cut(rest, ":")
		return host, repoPath
	}
	u, err := url.Parse(remote)
	if err != nil || u.Scheme == "" {
		return "", remote
	}
	return u.Hostname(), u.Path
}

// IsLocal checks whether the package has no remote to fetch from.
func (p Package) IsLocal() bool {
	return p.Remote == ""
}

// Placement is the (category, opt, name) tuple which determines where a package is installed.
type Placement struct {
	Category string
	Opt      bool
	Name     string
}

func (p Package) Placement() Placement {
	return Placement{Category: p.Category, Opt: p.Opt, Name: p.Name}
}

// Path returns the directory the package is installed to, within the directory of packages.
func (p Package) Path(packDir string) string {
	loading := startDirName
	if p.Opt {
		loading = optDirName
	}
	return filepath.Join(packDir, p.Category, loading, p.Name)
}

// ConfigPath returns the path of the package's plugin-specific config file.
func (p Package) ConfigPath(configDir string) string {
	return filepath.Join(configDir, p.Name+".vim")
}

// IsInstalled checks whether the package's directory exists.
func (p Package) IsInstalled(packDir string) bool {
	return DirExists(p.Path(packDir))
}

func (p Package) String() string {
	return p.IDName
}

func FileExists(filePath string) bool {
	results, err := os.Stat(filePath)
	if err == nil && !results.IsDir() {
		return true
	}
	return false
}

func DirExists(dirPath string) bool {
	dir, err := os.Stat(dirPath)
	if err == nil && dir.IsDir() {
		return true
	}
	return false
}

func EnsureExists(dirPath string) error {
	const perm = 0o755 // owner rwx, group rx, public rx
	return os.MkdirAll(dirPath, perm)
}

// CompareIDNames orders packages by their identities.
func CompareIDNames(a, b Package) int {
	return strings.Compare(a.IDName, b.IDName)
}
