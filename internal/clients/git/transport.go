package git

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-git/go-git/v5/plumbing/transport/client"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/pkg/errors"
	"github.com/rs/dnscache"
)

var installTransport sync.Once

// InstallTransport replaces the HTTP(S) transport used for fetches with one which resolves hosts
// through a shared DNS cache, so that concurrent fetches from one host share lookups.
func InstallTransport() {
	installTransport.Do(func() {
		resolver := &dnscache.Resolver{}
		dialer := &net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}
		hc := &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					host, port, err := net.SplitHostPort(addr)
					if err != nil {
						return nil, err
					}
					ips, err := resolver.LookupHost(ctx, host)
					if err != nil {
						return nil, err
					}
					for _, ip := range ips {
						conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
						if err == nil {
							return conn, nil
						}
					}
					return nil, errors.Errorf("couldn't dial any address resolved for %s", host)
				},
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
		transport := githttp.NewClient(hc)
		client.InstallProtocol("https", transport)
		client.InstallProtocol("http", transport)
	})
}
