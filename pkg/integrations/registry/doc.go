// Package registry checks image tags against OCI distribution registries.
//
// # Overview
//
// [Client.TagExists] probes
//
//	HEAD /v2/{path}/manifests/{tag}
//
// with an Accept header covering OCI indexes and manifests and the Docker v2
// manifest and manifest list types, falling back to GET when HEAD is not
// allowed. Registries that answer 401 with a Bearer or Basic challenge are
// handled by oras-go's auth client, which fetches a pull-scoped token and
// retries the probe once.
//
// # Image Names
//
// Names are normalized with github.com/distribution/reference:
//
//	nginx                 -> registry-1.docker.io  library/nginx
//	bitnami/redis         -> registry-1.docker.io  bitnami/redis
//	ghcr.io/org/app       -> ghcr.io               org/app
//	localhost:5000/app    -> localhost:5000        app
//
// No registry gets special treatment beyond the Docker Hub API host mapping.
package registry
