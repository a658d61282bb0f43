package skland

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
)

const (
	platformIOS = "1"
	appVersion  = "1.0.0"
)

// requestHeader is the device header the upstream folds into the signature
// payload. Field order matters: the serialized JSON is part of the signed
// bytes and must match what the headers of the request claim.
type requestHeader struct {
	Platform  string `json:"platform"`
	Timestamp string `json:"timestamp"`
	DeviceID  string `json:"dId"`
	VName     string `json:"vName"`
}

// Signer computes the per-request signature the zonai API requires:
// HMAC-SHA256 over path + query-or-body + timestamp + device header JSON,
// hex encoded, then MD5 of that hex string.
type Signer struct {
	deviceID string
	vName    string
}

// NewSigner creates a Signer bound to a device identifier. The same device
// identifier must be sent in request headers for the signature to verify.
func NewSigner(deviceID string) *Signer {
	return &Signer{deviceID: deviceID, vName: appVersion}
}

// Sign computes the signature for one request. payload is the raw query
// string for GET requests or the raw JSON body for POST requests, timestamp
// is unix seconds as a decimal string. Deterministic in its inputs.
func (s *Signer) Sign(secret, path, payload, timestamp string) (string, error) {
	hdr := requestHeader{
		Platform:  platformIOS,
		Timestamp: timestamp,
		DeviceID:  s.deviceID,
		VName:     s.vName,
	}
	hdrJSON, err := json.Marshal(hdr)
	if err != nil {
		return "", errors.Wrap(err, "marshal signature header")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(path + payload + timestamp))
	mac.Write(hdrJSON)
	hexDigest := hex.EncodeToString(mac.Sum(nil))

	sum := md5.Sum([]byte(hexDigest))
	return hex.EncodeToString(sum[:]), nil
}

// AuthHeaders builds the full signed header set for one request against a
// session credential.
func (s *Signer) AuthHeaders(cred SessionCredential, path, payload, timestamp string) (http.Header, error) {
	sign, err := s.Sign(cred.SigningSecret, path, payload, timestamp)
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set("cred", cred.Cred)
	h.Set("sign", sign)
	h.Set("timestamp", timestamp)
	h.Set("platform", platformIOS)
	h.Set("dId", s.deviceID)
	h.Set("vName", s.vName)
	return h, nil
}
