package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlog/internal/shared"
	"github.com/gabriel-vasile/mimetype"
)

// maxImageSize bounds what is read from disk before uploading.
const maxImageSize = 10 << 20

// UploaderOpts configures an [ImageUploader].
type UploaderOpts struct {
	Endpoint     string // e.g. https://api.cloudinary.com/v1_1
	CloudName    string
	UploadPreset string
	HTTPClient   *http.Client
	Logger       *log.Logger
}

// ImageUploader sends poster images to the external image host.
//
// The host is opaque: it accepts a multipart file plus a fixed preset and answers with a hosted URL.
// It never receives the session token.
type ImageUploader struct {
	url        string
	preset     string
	httpClient *http.Client
	logger     *log.Logger
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
}

// NewImageUploader creates an [ImageUploader]. Cloud name and preset are required.
func NewImageUploader(opts UploaderOpts) (*ImageUploader, error) {
	if opts.CloudName == "" || opts.UploadPreset == "" {
		return nil, fmt.Errorf("%w: image upload needs a cloud name and upload preset", shared.ErrInvalidConfig)
	}
	if opts.Endpoint == "" {
		opts.Endpoint = "https://api.cloudinary.com/v1_1"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	return &ImageUploader{
		url:        fmt.Sprintf("%s/%s/image/upload", strings.TrimRight(opts.Endpoint, "/"), opts.CloudName),
		preset:     opts.UploadPreset,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}, nil
}

// Upload sends the image in r and returns its hosted URL.
//
// Content that does not sniff as an image is rejected before any request is made.
func (u *ImageUploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read image: %v", shared.ErrUploadFailed, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", shared.ErrUploadFailed)
	}
	if len(data) > maxImageSize {
		return "", fmt.Errorf("%w: image larger than %d bytes", shared.ErrUploadFailed, maxImageSize)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: %s is %s, not an image", shared.ErrUploadFailed, filename, mt.String())
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrUploadFailed, err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrUploadFailed, err)
	}
	if err := writer.WriteField("upload_preset", u.preset); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrUploadFailed, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", shared.ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	u.logger.Info("uploading image", "file", filename, "type", mt.String(), "bytes", len(data))

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", shared.ErrUploadFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", shared.ErrUploadFailed, resp.StatusCode)
	}

	var out uploadResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("%w: invalid response: %v", shared.ErrUploadFailed, err)
	}

	hosted := out.SecureURL
	if hosted == "" {
		hosted = out.URL
	}
	if hosted == "" {
		return "", fmt.Errorf("%w: response carried no URL", shared.ErrUploadFailed)
	}
	return hosted, nil
}
