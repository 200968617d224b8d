package api

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, metrics *httpMetrics, r router) *routeHandlers {
	var contact contactSubmitter
	if deps.Contact != nil {
		contact = deps.Contact
	}

	return &routeHandlers{
		projectHandler: newProjectHandler(deps.Database.ProjectRepo()),
		uploadHandler:  newUploadHandler(deps.Uploader, metrics),
		authHandler:    newAuthHandler(deps.Authenticator),
		contactHandler: newContactHandler(contact, metrics),
		healthHandler:  newHealthHandler(deps.Database.ProjectRepo().GetDB(), r.startupTime),
	}
}
