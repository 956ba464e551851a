package registry

import (
	"github.com/distribution/reference"

	errs "github.com/matzehuels/versionsync/pkg/errors"
)

// Docker Hub is addressed as docker.io in image names but served from a
// different API host.
const (
	dockerHubDomain  = "docker.io"
	dockerHubAPIHost = "registry-1.docker.io"
)

// Reference is a parsed image name split into the registry API host and the
// repository path.
type Reference struct {
	Host string // API host, e.g. "ghcr.io" or "registry-1.docker.io"
	Path string // Repository path, e.g. "library/nginx"

	named reference.Named
}

// ParseImage normalizes an image name the way the docker CLI does:
// "nginx" becomes docker.io/library/nginx, "org/app" becomes
// docker.io/org/app. The name must not carry a tag or digest.
func ParseImage(image string) (Reference, error) {
	named, err := reference.ParseNormalizedNamed(image)
	if err != nil {
		return Reference{}, errs.Wrap(errs.ErrCodeConfiguration, err, "invalid image name %q", image)
	}
	if _, ok := named.(reference.Tagged); ok {
		return Reference{}, errs.New(errs.ErrCodeConfiguration, "image name %q must not include a tag", image)
	}
	if _, ok := named.(reference.Digested); ok {
		return Reference{}, errs.New(errs.ErrCodeConfiguration, "image name %q must not include a digest", image)
	}

	host := reference.Domain(named)
	if host == dockerHubDomain {
		host = dockerHubAPIHost
	}
	return Reference{Host: host, Path: reference.Path(named), named: named}, nil
}

// String returns the familiar form of the image name.
func (r Reference) String() string {
	if r.named == nil {
		return r.Host + "/" + r.Path
	}
	return reference.FamiliarString(r.named)
}
