package server

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/orderdesk/internal/logging"
)

// NewTLSConfig creates a TLS configuration from a certificate and key on disk
func NewTLSConfig(certPath, keyPath string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}

	logging.Info("TLS configuration created from files",
		zap.String("cert", certPath),
		zap.String("key", keyPath),
	)

	return buildTLSConfig(cert), nil
}

// NewTLSConfigFromMemory creates a TLS configuration from PEM-encoded
// certificate and key
func NewTLSConfigFromMemory(certPEM, keyPEM []byte) (*tls.Config, error) {
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate from memory: %w", err)
	}
	return buildTLSConfig(cert), nil
}

func buildTLSConfig(cert tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,

		VerifyConnection: func(cs tls.ConnectionState) error {
			logging.LogTLSHandshake(cs.ServerName, cs.Version, cs.CipherSuite)
			return nil
		},
	}
}

// CertParams holds parameters for generating a self-signed certificate
type CertParams struct {
	CommonName   string
	Organization string
	// SANs may hold DNS names or IP addresses
	SANs      []string
	ValidDays int
}

// DefaultCertParams returns parameters for a development certificate valid
// for host, localhost and the loopback addresses
func DefaultCertParams(host string) CertParams {
	sans := []string{"localhost", "127.0.0.1", "::1"}
	if host != "" && host != "localhost" && host != "0.0.0.0" && host != "::" {
		sans = append(sans, host)
	}
	return CertParams{
		CommonName:   "orderdesk-server",
		Organization: "OrderDesk Development",
		SANs:         sans,
		ValidDays:    365,
	}
}

// GeneratedCert is a self-signed certificate and its key in PEM form
type GeneratedCert struct {
	CertPEM     []byte
	KeyPEM      []byte
	Certificate *x509.Certificate
}

// GenerateSelfSignedCert creates an RSA 2048 certificate signed by its own key
func GenerateSelfSignedCert(params CertParams) (*GeneratedCert, error) {
	if params.ValidDays <= 0 {
		params.ValidDays = 365
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	notBefore := time.Now().Add(-time.Minute)
	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{params.Organization},
			CommonName:   params.CommonName,
		},
		NotBefore: notBefore,
		NotAfter:  notBefore.AddDate(0, 0, params.ValidDays),

		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, san := range params.SANs {
		if ip := net.ParseIP(san); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, san)
		}
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, fmt.Errorf("failed to parse generated certificate: %w", err)
	}

	return &GeneratedCert{
		CertPEM:     pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER}),
		KeyPEM:      pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privateKey)}),
		Certificate: cert,
	}, nil
}

// NewSelfSignedTLSConfig generates a certificate and wraps it in a TLS config
func NewSelfSignedTLSConfig(params CertParams) (*tls.Config, error) {
	generated, err := GenerateSelfSignedCert(params)
	if err != nil {
		return nil, err
	}

	logging.Info("TLS configuration created from generated certificate",
		zap.String("common_name", params.CommonName),
		zap.Strings("sans", params.SANs),
		zap.Time("not_after", generated.Certificate.NotAfter),
	)

	return NewTLSConfigFromMemory(generated.CertPEM, generated.KeyPEM)
}

// GetTLSInfo returns human-readable TLS configuration information
func GetTLSInfo(config *tls.Config) map[string]interface{} {
	info := map[string]interface{}{
		"min_version": tls.VersionName(config.MinVersion),
		"num_certs":   len(config.Certificates),
	}
	if len(config.Certificates) > 0 && config.Certificates[0].Leaf != nil {
		leaf := config.Certificates[0].Leaf
		info["subject"] = leaf.Subject.CommonName
		info["not_after"] = leaf.NotAfter.Format(time.RFC3339)
		info["dns_names"] = leaf.DNSNames
	}
	return info
}
