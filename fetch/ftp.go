package fetch

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/safing/biodb/log"
)

// Lister lists directory entries on a remote file server.
type Lister interface {
	List(ctx context.Context, addr, dir string) ([]string, error)
}

// FTPLister lists directories of anonymous FTP servers.
type FTPLister struct {
	Timeout time.Duration
}

// ftpAddress adds the default FTP port to addr if it has none.
func ftpAddress(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return net.JoinHostPort(addr, "21")
	}
	return addr
}

// List returns the names of the entries of dir on the FTP server at addr.
// addr may omit the port.
func (l *FTPLister) List(ctx context.Context, addr, dir string) (entries []string, err error) {
	timeout := l.Timeout
	if timeout == 0 {
		timeout = time.Minute
	}
	addr = ftpAddress(addr)

	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(timeout))
	if err != nil {
		return nil, &Error{URL: "ftp://" + addr, Err: err}
	}
	defer func() {
		quitErr := conn.Quit()
		if quitErr != nil {
			log.Debugf("fetch: failed to close ftp connection to %s: %s", addr, quitErr)
		}
	}()

	err = conn.Login("anonymous", "anonymous")
	if err != nil {
		return nil, &Error{URL: "ftp://" + addr, Err: fmt.Errorf("login failed: %w", err)}
	}

	entries, err = conn.NameList(dir)
	if err != nil {
		return nil, &Error{URL: "ftp://" + addr + "/" + dir, Err: err}
	}
	return entries, nil
}
