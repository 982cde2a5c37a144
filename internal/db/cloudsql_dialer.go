package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
)

// CloudSQLDialer routes go-mssqldb connections to a Cloud SQL for SQL Server
// instance through the Cloud SQL Go Connector, which supplies the TLS tunnel
// and instance lookup. The network address go-mssqldb computes is ignored.
//
// Implements io.Closer: the session closes it after the pool.
type CloudSQLDialer struct {
	dialer   *cloudsqlconn.Dialer
	instance string
}

// NewCloudSQLDialer creates a dialer for an instance connection name
// in the form project:region:instance.
func NewCloudSQLDialer(ctx context.Context, instance string) (*CloudSQLDialer, error) {
	if instance == "" {
		return nil, fmt.Errorf("Cloud SQL transport requires an instance connection name (project:region:instance)")
	}

	d, err := cloudsqlconn.NewDialer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w", err)
	}
	return &CloudSQLDialer{dialer: d, instance: instance}, nil
}

// DialContext satisfies the go-mssqldb Dialer interface.
func (d *CloudSQLDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	return d.dialer.Dial(ctx, d.instance)
}

// Close releases the Cloud SQL dialer resources.
func (d *CloudSQLDialer) Close() error {
	if d.dialer == nil {
		return nil
	}
	err := d.dialer.Close()
	d.dialer = nil
	return err
}
