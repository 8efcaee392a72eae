// Package beams is the Pusher Beams server SDK for Go.
//
// It lets a backend authenticate its users for push notifications and
// publish notifications to interests (topic broadcast) or to specific users.
// Every argument is validated before any network call is made, so an invalid
// call never reaches the service.
//
// # Creating a client
//
//	c, err := beams.New(beams.Config{
//	    InstanceID: "8f9a6e22-2483-49aa-8552-125f1a4c5781",
//	    SecretKey:  os.Getenv("BEAMS_SECRET_KEY"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Authenticating users
//
// GenerateToken signs a 24 hour token for a user. It is usually returned from
// the backend's auth endpoint to the device SDK:
//
//	tok, err := c.GenerateToken("user-0001")
//	json.NewEncoder(w).Encode(tok) // {"token":"eyJhbGciOi..."}
//
// # Publishing
//
//	resp, err := c.PublishToInterests(ctx, []string{"donuts"}, beams.PublishRequest{
//	    "apns": map[string]any{"aps": map[string]any{"alert": "Hi!"}},
//	})
//
//	resp, err = c.PublishToUsers(ctx, []string{"user-0001"}, beams.PublishRequest{
//	    "web": map[string]any{"notification": map[string]any{"title": "Hi!"}},
//	})
//
// The payload is opaque to this package and forwarded as-is, except that the
// routing field ("interests" or "users") is always overwritten.
//
// # Errors
//
// All errors are *Error values. Match their Kind with errors.Is:
//
//	_, err := c.PublishToInterests(ctx, []string{"a b"}, req)
//	if errors.Is(err, beams.ErrForbiddenCharacter) { ... }
//
//	var be *beams.Error
//	if errors.As(err, &be) && be.Kind == beams.ErrHTTP {
//	    log.Printf("service returned %d", be.StatusCode)
//	}
//
// Failed calls are never retried.
package beams
