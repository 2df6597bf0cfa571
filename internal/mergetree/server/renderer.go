package server

import (
	"errors"
	"io"
	"io/fs"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/labstack/echo/v4"
)

// Renderer adapts a pongo2 template set to echo.
type Renderer struct {
	TemplateSet *pongo2.TemplateSet
	Debug       bool
}

// NewRenderer loads templates from the prefix directory of fsys, or from the prefix directory on local disk in debug mode, so edits show up without a rebuild.
func NewRenderer(prefix string, fsys fs.FS, debug bool) *Renderer {
	var loader pongo2.TemplateLoader
	if debug {
		loader = pongo2.MustNewLocalFileSystemLoader(prefix)
	} else {
		sub, err := fs.Sub(fsys, strings.TrimSuffix(prefix, "/"))
		if err != nil {
			panic(err)
		}
		loader = pongo2.NewFSLoader(sub)
	}
	set := pongo2.NewSet("mergetree", loader)
	set.Debug = debug
	return &Renderer{
		TemplateSet: set,
		Debug:       debug,
	}
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	ctx, ok := data.(pongo2.Context)
	if !ok {
		return errors.New("template data must be a pongo2.Context")
	}

	var tpl *pongo2.Template
	var err error
	if r.Debug {
		tpl, err = r.TemplateSet.FromFile(name)
	} else {
		tpl, err = r.TemplateSet.FromCache(name)
	}
	if err != nil {
		return err
	}
	ctx["path"] = c.Request().URL.Path
	return tpl.ExecuteWriter(ctx, w)
}
