package view

import (
	"image"
	"strings"

	"github.com/soocke/proctor-go/ui/images"
	"github.com/soocke/proctor-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// OverlayView is the always-on proctoring window. It only renders what it is
// given and holds no capture resources.
type OverlayView struct {
	win       *ToplevelWidget
	tracksLbl *LabelWidget
	thumbLbl  *LabelWidget
	photo     *Img // current thumbnail, deleted before replacement
}

func NewOverlayView() *OverlayView { return &OverlayView{} }

// ShowOverlay opens the overlay window, or refreshes it when already open.
func (v *OverlayView) ShowOverlay(tracks []string) {
	if v.win == nil {
		win := App.Toplevel(Borderwidth(2), Background(theme.ColorAccent))
		win.WmTitle("Proctoring")
		WmAttributes(win.Window, "-topmost", 1)
		WmGeometry(win.Window, "260x200+20+20")
		v.win = win
		Grid(win.Label(Txt("REC - camera live"), Foreground("white"), Background(theme.ColorDanger)), Row(0), Column(0), Sticky("we"))
		v.tracksLbl = win.Label(Txt(""), Anchor("w"), Justify("left"))
		Grid(v.tracksLbl, Row(1), Column(0), Sticky("we"))
		placeholder := image.NewRGBA(image.Rect(0, 0, 240, 135))
		v.photo = NewPhoto(Data(images.EncodePNG(placeholder)))
		v.thumbLbl = win.Label(Image(v.photo), Borderwidth(1), Relief("sunken"))
		Grid(v.thumbLbl, Row(2), Column(0), Padx("0.4m"), Pady("0.4m"))
	}
	v.tracksLbl.Configure(Txt(strings.Join(tracks, "\n")))
}

// HideOverlay destroys the overlay window.
func (v *OverlayView) HideOverlay() {
	if v.win == nil {
		return
	}
	if v.photo != nil {
		v.photo.Delete()
		v.photo = nil
	}
	Destroy(v.win)
	v.win = nil
	v.tracksLbl = nil
	v.thumbLbl = nil
}

// UpdateThumbnail replaces the screen thumbnail.
func (v *OverlayView) UpdateThumbnail(img image.Image) {
	if v.thumbLbl == nil || img == nil {
		return
	}
	if v.photo != nil {
		v.photo.Delete()
	}
	v.photo = NewPhoto(Data(images.EncodePNG(img)))
	v.thumbLbl.Configure(Image(v.photo))
}
