package request

// GuardRequest asks whether the page at Path may render.
type GuardRequest struct {
	Path     string `form:"path" binding:"required,startswith=/"`
	Redirect string `form:"redirect"`
}
