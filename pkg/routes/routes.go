package routes

import (
	"github.com/vango-dev/fractals/pkg/nav"
	"github.com/vango-dev/fractals/pkg/view"
	"github.com/vango-dev/fractals/views"
)

// Route names.
const (
	MainPage = "mainPage"
	Fractals = "fractals"
)

// Descriptor describes one navigable location.
type Descriptor struct {
	// Path is the URL path pattern, relative to the base.
	Path string

	// Name identifies the route for programmatic navigation.
	Name string

	// Aliases are extra paths resolving to this descriptor.
	Aliases []string

	// Load produces the view on demand. It is never called while the
	// table is being built.
	Load view.Loader
}

// Table is an ordered, immutable sequence of descriptors. The first
// descriptor matching a path wins.
type Table struct {
	descriptors []Descriptor
}

// NewTable creates a table from descriptors, copying them.
func NewTable(descriptors ...Descriptor) Table {
	t := Table{descriptors: make([]Descriptor, len(descriptors))}
	for i, d := range descriptors {
		t.descriptors[i] = d.clone()
	}
	return t
}

// BuildRoutes returns the route table with loaders reading the view
// bundles embedded in the binary.
func BuildRoutes() Table {
	return Build(view.NewFSSource(views.FS()))
}

// Build returns the route table with loaders reading from src.
func Build(src view.Source) Table {
	return NewTable(
		Descriptor{
			Path:    "/",
			Name:    MainPage,
			Aliases: []string{""},
			Load:    view.NewLoader(src, views.MainPage),
		},
		Descriptor{
			Path: "/fractals",
			Name: Fractals,
			Load: view.NewLoader(src, views.FractalsPage),
		},
	)
}

// Len returns the number of descriptors.
func (t Table) Len() int {
	return len(t.descriptors)
}

// At returns a copy of the i-th descriptor.
func (t Table) At(i int) Descriptor {
	return t.descriptors[i].clone()
}

// All returns a copy of every descriptor, in order.
func (t Table) All() []Descriptor {
	out := make([]Descriptor, len(t.descriptors))
	for i, d := range t.descriptors {
		out[i] = d.clone()
	}
	return out
}

// ByName returns the first descriptor with the given name.
func (t Table) ByName(name string) (Descriptor, bool) {
	for _, d := range t.descriptors {
		if d.Name == name {
			return d.clone(), true
		}
	}
	return Descriptor{}, false
}

// NavRoutes converts the table into the engine's route list.
func (t Table) NavRoutes() []nav.Route {
	out := make([]nav.Route, len(t.descriptors))
	for i, d := range t.descriptors {
		out[i] = nav.Route{
			Path:    d.Path,
			Name:    d.Name,
			Aliases: append([]string(nil), d.Aliases...),
			Load:    d.Load,
		}
	}
	return out
}

func (d Descriptor) clone() Descriptor {
	if d.Aliases != nil {
		d.Aliases = append([]string(nil), d.Aliases...)
	}
	return d
}
