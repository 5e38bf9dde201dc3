package keepalive

import (
	"context"
	"net"
	"time"
)

// Dialer is copied from the invocation in http.DefaultTransport:
// https://github.com/golang/go/blob/859cab099c5a9a9b4939960b630b78e468c8c39e/src/net/http/transport.go#L40-L44
var Dialer = &net.Dialer{
	Timeout:   30 * time.Second,
	KeepAlive: 30 * time.Second,
}

// DialerFunc dials |addr| with |ctx|. It's designed to be easily used
// as an http.Transport DialContext, eg:
//
//	&http.Transport{DialContext: keepalive.DialerFunc}
func DialerFunc(ctx context.Context, network, addr string) (net.Conn, error) {
	return Dialer.DialContext(ctx, network, addr)
}
