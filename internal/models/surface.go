package models

// Surface identifies one of the injection locations a probe can target.
type Surface string

const (
	SurfaceURL      Surface = "URL"
	SurfaceBodyForm Surface = "BODY_FORM"
	SurfaceBodyJSON Surface = "BODY_JSON"
	SurfaceHeader   Surface = "HEADER"
	SurfaceCookie   Surface = "COOKIE"
)

// AllSurfaces lists every surface in report order.
var AllSurfaces = []Surface{SurfaceURL, SurfaceBodyForm, SurfaceBodyJSON, SurfaceHeader, SurfaceCookie}

func (s Surface) String() string {
	return string(s)
}
