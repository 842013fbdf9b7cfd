package controller

import (
	"github.com/sharetube/videochat/pkg/protocol"
	"github.com/sharetube/videochat/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdWSMw(), c.loggerWSMw())
	mux.SetErrorHandler(c.wsErrorHandler)

	// membership
	wsrouter.AddRoute(mux, protocol.TypeJoinRoom, c.handleJoinRoom)

	// shared video
	wsrouter.AddRoute(mux, protocol.TypeVideoURL, c.handleVideoURL)
	wsrouter.AddRoute(mux, protocol.TypeVideoControl, c.handleVideoControl)

	return mux
}
