package beams

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmerrifield20/beams/internal/identity"
	"go.uber.org/zap"
)

// Config identifies one Beams instance. It is fixed for the lifetime of a
// Client.
type Config struct {
	InstanceID string `json:"instance_id" yaml:"instance_id"`
	SecretKey  string `json:"-"           yaml:"-"`
	// Endpoint defaults to DefaultEndpoint(InstanceID).
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// DefaultEndpoint returns the service URL of an instance. It is also the
// issuer of the instance's tokens.
func DefaultEndpoint(instanceID string) string {
	return fmt.Sprintf("https://%s.pushnotifications.pusher.com", instanceID)
}

// Token is a signed Beams token for one user, valid for 24 hours.
type Token struct {
	Token string `json:"token" yaml:"token"`
}

// Client is the Beams SDK entry point. It holds no mutable state after New
// returns and is safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tokens     *identity.TokenIssuer
	logger     *zap.Logger
}

// Option is a functional option for configuring a Client.
type Option func(*Client) error

// WithHTTPClient sets the http.Client used for every call. Timeouts, proxies
// and TLS settings belong there; the Client imposes none of its own.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client must not be nil")
		}
		c.httpClient = hc
		return nil
	}
}

// WithLogger sets the logger used for request tracing. The default discards
// everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		c.logger = logger
		return nil
	}
}

// New validates cfg and creates a Client.
//
//	c, err := beams.New(beams.Config{
//	    InstanceID: "8f9a6e22-2483-49aa-8552-125f1a4c5781",
//	    SecretKey:  os.Getenv("BEAMS_SECRET_KEY"),
//	})
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.InstanceID == "" {
		return nil, NewError(ErrMissingArgument, `"instanceId" is required in PushNotifications options`)
	}
	if cfg.SecretKey == "" {
		return nil, NewError(ErrMissingArgument, `"secretKey" is required in PushNotifications options`)
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint(cfg.InstanceID)
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		tokens:     identity.NewTokenIssuer(cfg.SecretKey, DefaultEndpoint(cfg.InstanceID), identity.DefaultTokenTTL),
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew is like New but panics on error. Useful in tests and program init.
func MustNew(cfg Config, opts ...Option) *Client {
	c, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// InstanceID returns the configured instance ID.
func (c *Client) InstanceID() string { return c.cfg.InstanceID }

// Endpoint returns the base URL requests are sent to.
func (c *Client) Endpoint() string { return c.cfg.Endpoint }

// GenerateToken returns a Beams token for userID. No network call is made.
// Hand the token to the user's device so it can associate itself with userID.
func (c *Client) GenerateToken(userID string) (*Token, error) {
	id, err := ValidateTokenUserID(userID)
	if err != nil {
		return nil, err
	}
	signed, err := c.tokens.Issue(id)
	if err != nil {
		return nil, &Error{Kind: ErrSigning, Msg: "generate token", Err: err}
	}
	return &Token{Token: signed}, nil
}

// PublishToInterests publishes req to every device subscribed to any of
// interests. The body sent is req with "interests" set.
//
//	resp, err := c.PublishToInterests(ctx, []string{"donuts"}, beams.PublishRequest{
//	    "apns": map[string]any{"aps": map[string]any{"alert": "Hi!"}},
//	})
//	fmt.Println(resp["publishId"])
func (c *Client) PublishToInterests(ctx context.Context, interests []string, req PublishRequest) (Response, error) {
	valid, err := ValidateInterests(interests)
	if err != nil {
		return nil, err
	}
	if err := ValidatePublishRequest(req); err != nil {
		return nil, err
	}
	return c.do(ctx, publishToInterestsRequest(c.cfg.InstanceID, valid, req))
}

// PublishToUsers publishes req to every device associated with any of users.
// The body sent is req with "users" set.
func (c *Client) PublishToUsers(ctx context.Context, users []string, req PublishRequest) (Response, error) {
	valid, err := ValidateUsers(users)
	if err != nil {
		return nil, err
	}
	if err := ValidatePublishRequest(req); err != nil {
		return nil, err
	}
	return c.do(ctx, publishToUsersRequest(c.cfg.InstanceID, valid, req))
}

// DeleteUser removes userID and all of its devices from the instance.
func (c *Client) DeleteUser(ctx context.Context, userID string) (Response, error) {
	id, err := ValidateUserID(userID)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, deleteUserRequest(c.cfg.InstanceID, id))
}

// Publish sends a complete publish body in the service's wire format, such as
// one read from a JSON file. body must contain exactly one of "interests" or
// "users"; the routing value is validated from its decoded JSON form.
func (c *Client) Publish(ctx context.Context, body map[string]any) (Response, error) {
	route, err := ParsePublishBody(body)
	if err != nil {
		return nil, err
	}
	if route.Interests != nil {
		return c.PublishToInterests(ctx, route.Interests, route.Request)
	}
	return c.PublishToUsers(ctx, route.Users, route.Request)
}

// PublishRoute is a publish body split into its routing field and payload.
// Exactly one of Interests and Users is set.
type PublishRoute struct {
	Interests []string
	Users     []string
	Request   PublishRequest
}

// ParsePublishBody validates the routing field of a publish body and splits
// it from the payload. body is not modified.
func ParsePublishBody(body map[string]any) (*PublishRoute, error) {
	if body == nil {
		return nil, NewError(ErrMissingArgument, "publishRequest argument is required")
	}
	rawInterests, hasInterests := body["interests"]
	rawUsers, hasUsers := body["users"]
	switch {
	case hasInterests && hasUsers:
		return nil, NewError(ErrInvalidType, `publish body must not contain both "interests" and "users"`)
	case !hasInterests && !hasUsers:
		return nil, NewError(ErrMissingArgument, `publish body must contain "interests" or "users"`)
	}

	payload := make(PublishRequest, len(body))
	for k, v := range body {
		if k != "interests" && k != "users" {
			payload[k] = v
		}
	}

	route := &PublishRoute{Request: payload}
	var err error
	if hasInterests {
		route.Interests, err = ValidateInterests(rawInterests)
	} else {
		route.Users, err = ValidateUsers(rawUsers)
	}
	if err != nil {
		return nil, err
	}
	return route, nil
}
