// Command httpcoredemo is a minimal host around the parser and
// connections packages: it accepts raw TCP connections, feeds everything
// read from each into its own Parser, and periodically sweeps overdue
// connections via connections.List.Expired. It exists to exercise
// the public API end to end, not as a production server.
package main

import (
	"crypto/tls"
	"flag"
	"net"
	"time"

	"github.com/indigo-web/httpcore/config"
	"github.com/indigo-web/httpcore/connections"
	"github.com/indigo-web/httpcore/internal/log"
	"github.com/indigo-web/httpcore/parser"
	"golang.org/x/crypto/acme/autocert"
)

var logger = log.New("httpcoredemo")

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	autocertDomain := flag.String("autocert-domain", "", "if set, terminate TLS via ACME for this domain instead of plaintext")
	flag.Parse()

	listener, err := newListener(*addr, *autocertDomain)
	if err != nil {
		logger.Errorf("listen: %v", err)
		return
	}

	cfg := config.Default()
	conns := connections.New()

	go sweep(conns, cfg)

	logger.Infof("listening on %s", *addr)
	serve(listener, conns, cfg)
}

func newListener(addr, autocertDomain string) (net.Listener, error) {
	if autocertDomain == "" {
		return net.Listen("tcp", addr)
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(autocertDomain),
		Cache:      autocert.DirCache("httpcoredemo-autocert-cache"),
	}

	return tls.Listen("tcp", addr, manager.TLSConfig())
}

func serve(listener net.Listener, conns *connections.List, cfg *config.Config) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			logger.Errorf("accept: %v", err)
			return
		}

		go handle(conn, conns, cfg)
	}
}

func handle(conn net.Conn, conns *connections.List, cfg *config.Config) {
	defer conn.Close()

	p := parser.New(parser.AutoDetect, cfg, callbacksFor(conn, conns))
	conns.Touch(p) // guards the connect-to-first-byte window, same as the first message start
	defer conns.Release(p)

	buf := make([]byte, 4*1024)

	for {
		n, err := conn.Read(buf)
		if n > 0 {
			data := buf[:n]
			for len(data) > 0 {
				consumed := p.Execute(data)
				if consumed == 0 {
					break
				}

				data = data[consumed:]
			}

			if p.Err() != nil {
				logger.Errorf("%s: %s", conns.IDOf(p), p.Err().Diagnostic())
				return
			}
		}

		if err != nil {
			p.Finish()
			return
		}
	}
}

func callbacksFor(conn net.Conn, conns *connections.List) parser.Callbacks {
	return parser.Callbacks{
		OnMessageStart: func(p *parser.Parser, _ []byte) int {
			conns.Touch(p)
			return 0
		},
		OnMessageComplete: func(p *parser.Parser, _ []byte) int {
			conns.Complete(p)
			return 0
		},
		OnRequest: func(p *parser.Parser, _ []byte) int {
			logger.Infof("%s %s", p.Method(), conn.RemoteAddr())
			return 0
		},
		OnConnect: func(*parser.Parser, []byte) int {
			logger.Infof("tunnel established with %s", conn.RemoteAddr())
			return 0
		},
	}
}

func sweep(conns *connections.List, cfg *config.Config) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		for p := range conns.Expired(cfg.Timeouts.Headers, cfg.Timeouts.Request) {
			logger.Infof("expiring connection %s", conns.IDOf(p))
			conns.Release(p)
		}
	}
}
