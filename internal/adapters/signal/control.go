package signal

import "github.com/Parth0603/backendServer/internal/app"

func (ctl *Controller) handlePing(c *WsConn) {
	ctl.sendEvent(c, app.EvPong, nil)
}
