package certs

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseLeaf(t *testing.T, cert tls.Certificate) *x509.Certificate {
	t.Helper()
	require.NotEmpty(t, cert.Certificate)
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	return leaf
}

func TestGetOrCreateCertificate_CreatesNew(t *testing.T) {
	certDir := filepath.Join(t.TempDir(), "certs")
	m := NewFileManager(certDir)

	cert, err := m.GetOrCreateCertificate()
	require.NoError(t, err)

	leaf := parseLeaf(t, cert)
	assert.Equal(t, "Conscious Spending Plan", leaf.Subject.Organization[0])
	assert.Contains(t, leaf.DNSNames, "localhost")
	assert.True(t, leaf.NotAfter.After(time.Now().Add(364*24*time.Hour)), "certificate should be valid for about a year")
	assert.NoError(t, leaf.VerifyHostname("localhost"))
	assert.NoError(t, leaf.VerifyHostname("127.0.0.1"))

	// Both files land on disk
	_, err = os.Stat(filepath.Join(certDir, "localhost.crt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(certDir, "localhost.key"))
	assert.NoError(t, err)
}

func TestGetOrCreateCertificate_ReusesExisting(t *testing.T) {
	certDir := t.TempDir()
	m := NewFileManager(certDir)

	first, err := m.GetOrCreateCertificate()
	require.NoError(t, err)

	second, err := m.GetOrCreateCertificate()
	require.NoError(t, err)

	assert.Equal(t, parseLeaf(t, first).SerialNumber, parseLeaf(t, second).SerialNumber)
	assert.Equal(t, first.Certificate[0], second.Certificate[0])
}

func TestGetOrCreateCertificate_RegeneratesCorruptFiles(t *testing.T) {
	certDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(certDir, "localhost.crt"), []byte("not a certificate"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(certDir, "localhost.key"), []byte("not a key"), 0600))

	m := NewFileManager(certDir)
	cert, err := m.GetOrCreateCertificate()
	require.NoError(t, err)

	leaf := parseLeaf(t, cert)
	assert.True(t, leaf.NotBefore.After(time.Now().Add(-time.Minute)), "corrupt files should be replaced with a fresh certificate")
}

func TestVerifyCertificate_RejectsEmpty(t *testing.T) {
	m := NewFileManager(t.TempDir())
	assert.Error(t, m.verifyCertificate(tls.Certificate{}))
}
