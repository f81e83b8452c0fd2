package widget

import (
	dwerrors "github.com/vango-dev/docwidget/internal/errors"
	"github.com/vango-dev/docwidget/pkg/notify"
	"github.com/vango-dev/docwidget/pkg/upload"
	"github.com/vango-dev/docwidget/pkg/vdom"
)

// handlePreview shows a stored file in a dialog, or downloads it when its
// type can't be previewed.
func (c *Controller) handlePreview(x *Context) error {
	path, docType := x.Target().Data("path"), x.Target().Data("type")
	filename := upload.FileName(path)

	if !upload.IsPreviewable(filename, c.cfg.PreviewExtensions) {
		return c.download(x, filename, docType)
	}

	href, err := c.deps.Resolver.FileURL(x.StdContext(), filename, docType, upload.ActionPreview)
	if err != nil {
		c.logger.Error("preview url failed", "file", filename, "type", docType, "error", err)
		return dwerrors.New("DW204").Wrap(err)
	}

	c.deps.Notifier.Show(notify.Notice{
		Level:    notify.LevelInfo,
		Title:    filename,
		Body:     previewBody(filename, href),
		Fallback: href,
		Wide:     true,
	})
	return nil
}

func (c *Controller) handleDownload(x *Context) error {
	path, docType := x.Target().Data("path"), x.Target().Data("type")
	return c.download(x, upload.FileName(path), docType)
}

// download clicks a transient anchor pointing at the file.
func (c *Controller) download(x *Context, filename, docType string) error {
	href, err := c.deps.Resolver.FileURL(x.StdContext(), filename, docType, upload.ActionDownload)
	if err != nil {
		c.logger.Error("download url failed", "file", filename, "type", docType, "error", err)
		return dwerrors.New("DW204").Wrap(err)
	}

	anchor := vdom.A(vdom.Href(href), vdom.Download(filename), vdom.StyleAttr("display: none"))
	c.doc.Body().Append(anchor)
	c.deps.Browser.Click(anchor)
	c.doc.Remove(anchor)
	return nil
}

// previewBody embeds PDFs and shows everything else as an image.
func previewBody(filename, href string) *vdom.VNode {
	if upload.Extension(filename) == "pdf" {
		return vdom.Embed(
			vdom.Src(href),
			vdom.Type("application/pdf"),
			vdom.Width("100%"),
			vdom.Height("600px"),
		)
	}
	return vdom.Img(vdom.Src(href), vdom.Class("img-fluid"), vdom.Alt(filename))
}
