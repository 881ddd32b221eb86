// Package project detects the framework of a web project from its
// package.json and patches project files (manifest scripts, ignore files)
// for encrypted env workflows.
package project

import (
	"os"
	"path/filepath"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// ManifestName is the project manifest file.
const ManifestName = "package.json"

// Kind is a detected project framework.
type Kind string

const (
	KindNext       Kind = "next"
	KindVite       Kind = "vite"
	KindViteReact  Kind = "vite-react"
	KindViteVue    Kind = "vite-vue"
	KindViteSvelte Kind = "vite-svelte"
	KindUnknown    Kind = "unknown"
)

// Display returns a human-oriented framework label.
func (k Kind) Display() string {
	switch k {
	case KindNext:
		return "Next.js"
	case KindVite:
		return "Vite"
	case KindViteReact:
		return "Vite + React"
	case KindViteVue:
		return "Vite + Vue"
	case KindViteSvelte:
		return "Vite + Svelte"
	default:
		return "unknown"
	}
}

// Descriptor describes the detected project. It is derived once per
// command invocation and never mutated.
type Descriptor struct {
	// Kind is the detected framework, KindUnknown when undetectable.
	Kind Kind

	// Version is the declared version of the framework package.
	Version string

	// Name is the declared package name, used as the namespacing label
	// for vault items. Falls back to the directory base name.
	Name string
}

// Detect reads the manifest in dir and classifies the project. An absent
// or unparsable manifest yields KindUnknown with the directory name.
func Detect(dir string) Descriptor {
	desc := Descriptor{Kind: KindUnknown, Name: filepath.Base(dir)}

	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return desc
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), kjson.Parser()); err != nil {
		return desc
	}

	if name := k.String("name"); name != "" {
		desc.Name = name
	}

	deps := make(map[string]string)
	for _, group := range []string{"dependencies", "devDependencies"} {
		for pkg, version := range k.StringMap(group) {
			deps[pkg] = version
		}
	}

	switch {
	case deps["next"] != "":
		desc.Kind = KindNext
		desc.Version = deps["next"]
	case deps["vite"] != "":
		desc.Kind = KindVite
		desc.Version = deps["vite"]
		switch {
		case deps["@vitejs/plugin-react"] != "" || deps["@vitejs/plugin-react-swc"] != "":
			desc.Kind = KindViteReact
		case deps["@vitejs/plugin-vue"] != "":
			desc.Kind = KindViteVue
		case deps["@sveltejs/vite-plugin-svelte"] != "":
			desc.Kind = KindViteSvelte
		}
	}

	return desc
}

// HasDependency reports whether the manifest in dir declares pkg in
// dependencies or devDependencies.
func HasDependency(dir, pkg string) bool {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return false
	}
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), kjson.Parser()); err != nil {
		return false
	}
	return k.String("dependencies."+pkg) != "" || k.String("devDependencies."+pkg) != ""
}
