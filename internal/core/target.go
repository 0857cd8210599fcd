package core

import (
	"fmt"
	"strings"
)

// PlatformKind enumerates the target platforms the assembler branches on.
type PlatformKind int

const (
	PlatformNone PlatformKind = iota
	PlatformWeb
	PlatformWebWorker
	PlatformNode
)

func (k PlatformKind) String() string {
	switch k {
	case PlatformWeb:
		return "web"
	case PlatformWebWorker:
		return "webworker"
	case PlatformNode:
		return "node"
	default:
		return "none"
	}
}

// TargetPlatform is a platform variant. Param carries the Node version for
// PlatformNode ("" means unversioned).
type TargetPlatform struct {
	Kind  PlatformKind
	Param string
}

func (p TargetPlatform) String() string {
	if p.Param == "" {
		return p.Kind.String()
	}
	return p.Kind.String() + p.Param
}

// Target describes the environment emitted code runs in.
type Target struct {
	Platform TargetPlatform
}

// Web returns the browser target.
func Web() Target { return Target{Platform: TargetPlatform{Kind: PlatformWeb}} }

// Node returns a Node target with the given version parameter.
func Node(version string) Target {
	return Target{Platform: TargetPlatform{Kind: PlatformNode, Param: version}}
}

// ParseTarget parses target strings such as "web", "node", "node16.14",
// "webworker" and "none". The empty string defaults to "web".
func ParseTarget(s string) (Target, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "" || s == "web":
		return Web(), nil
	case s == "webworker":
		return Target{Platform: TargetPlatform{Kind: PlatformWebWorker}}, nil
	case s == "none":
		return Target{}, nil
	case strings.HasPrefix(s, "node"):
		version := strings.TrimPrefix(s, "node")
		for _, r := range version {
			if (r < '0' || r > '9') && r != '.' {
				return Target{}, fmt.Errorf("invalid node target %q", s)
			}
		}
		return Node(version), nil
	}
	return Target{}, fmt.Errorf("unknown target %q", s)
}
