package veo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"padhai/internal/infra"
	"padhai/internal/providers/genai"
	"padhai/internal/videogen"
)

// Options configures the Veo client.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client drives Veo long-running operations over the Gemini REST API.
type Client struct {
	api    *genai.Client
	logger infra.Logger
}

type predictRequest struct {
	Instances []instance `json:"instances"`
}

type instance struct {
	Prompt string `json:"prompt"`
}

type operation struct {
	Name     string        `json:"name"`
	Done     bool          `json:"done"`
	Error    *genai.Status `json:"error,omitempty"`
	Response *opResponse   `json:"response,omitempty"`
}

type opResponse struct {
	GenerateVideoResponse *struct {
		GeneratedSamples []struct {
			Video *video `json:"video"`
		} `json:"generatedSamples"`
	} `json:"generateVideoResponse,omitempty"`
	GeneratedVideos []struct {
		Video *video `json:"video"`
	} `json:"generatedVideos,omitempty"`
}

type video struct {
	URI        string `json:"uri,omitempty"`
	VideoBytes string `json:"videoBytes,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
}

func NewClient(opts Options) (*Client, error) {
	api, err := genai.NewClient(genai.Options{
		APIKey:     opts.APIKey,
		BaseURL:    opts.BaseURL,
		HTTPClient: opts.HTTPClient,
		Logger:     opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	logger := infra.NopLogger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{api: api, logger: logger}, nil
}

func (c *Client) HasCredential() bool {
	return c.api.HasAPIKey()
}

// Submit starts a generation for prompt on model.
func (c *Client) Submit(ctx context.Context, model, prompt string) (*videogen.Job, error) {
	var op operation
	path := fmt.Sprintf("models/%s:predictLongRunning", url.PathEscape(model))
	if err := c.api.Post(ctx, path, predictRequest{Instances: []instance{{Prompt: prompt}}}, &op); err != nil {
		return nil, providerError(err)
	}
	if op.Name == "" && !op.Done {
		return nil, errors.New("veo: operation has no name")
	}
	c.logger.Debug().Str("operation", op.Name).Bool("done", op.Done).Msg("veo: operation submitted")
	return c.job(op), nil
}

// Refresh fetches the current state of job's operation.
func (c *Client) Refresh(ctx context.Context, job *videogen.Job) (*videogen.Job, error) {
	if job == nil || job.OperationName == "" {
		return nil, errors.New("veo: cannot refresh an operation without a name")
	}
	var op operation
	if err := c.api.Get(ctx, job.OperationName, &op); err != nil {
		return nil, providerError(err)
	}
	if op.Name == "" {
		op.Name = job.OperationName
	}
	return c.job(op), nil
}

func (c *Client) job(op operation) *videogen.Job {
	job := op.job()
	if job.Result != nil {
		for _, ref := range job.Result.Videos {
			if ref.InlineErr != nil {
				c.logger.Warn().Err(ref.InlineErr).Str("operation", op.Name).Msg("veo: inline video bytes could not be decoded")
			}
		}
	}
	return job
}

// Download writes the referenced video into w.
func (c *Client) Download(ctx context.Context, ref videogen.VideoRef, w io.Writer) error {
	var err error
	switch {
	case len(ref.Data) > 0:
		_, err = w.Write(ref.Data)
	case ref.URI != "":
		_, err = c.api.Download(ctx, ref.URI, w)
	default:
		return errors.New("veo: video reference is empty")
	}
	return providerError(err)
}

func (op operation) job() *videogen.Job {
	job := &videogen.Job{OperationName: op.Name, Done: op.Done}
	if !op.Done {
		return job
	}
	if op.Error != nil {
		apiErr := genai.OperationError(*op.Error)
		job.Err = &videogen.ProviderError{StatusCode: apiErr.StatusCode, Status: apiErr.Status, Message: apiErr.Message}
		return job
	}
	if op.Response != nil {
		job.Result = &videogen.OperationResult{Videos: op.Response.videos()}
	}
	return job
}

func (r *opResponse) videos() []videogen.VideoRef {
	var refs []videogen.VideoRef
	if r.GenerateVideoResponse != nil {
		for _, s := range r.GenerateVideoResponse.GeneratedSamples {
			if s.Video != nil {
				refs = append(refs, s.Video.ref())
			}
		}
	}
	for _, g := range r.GeneratedVideos {
		if g.Video != nil {
			refs = append(refs, g.Video.ref())
		}
	}
	return refs
}

func (v *video) ref() videogen.VideoRef {
	ref := videogen.VideoRef{URI: strings.TrimSpace(v.URI), MimeType: v.MimeType}
	if v.VideoBytes != "" {
		var buf bytes.Buffer
		if _, err := genai.DecodeInline(v.VideoBytes, &buf); err != nil {
			ref.InlineErr = err
		} else {
			ref.Data = buf.Bytes()
		}
	}
	return ref
}

// providerError lifts transport errors into the tagged error videogen
// classifies on. Other errors pass through unchanged.
func providerError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return &videogen.ProviderError{StatusCode: apiErr.StatusCode, Status: apiErr.Status, Message: apiErr.Message}
	}
	return err
}

var _ videogen.Provider = (*Client)(nil)
