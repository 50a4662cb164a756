/*
Package authsdk is a small client for the stanza session service.

# SDKClient vs Session

SDKClient talks to the public endpoints. Session wraps the tokens returned
by a sign-in and keeps the access token fresh:

	client := authsdk.NewSDKClient("https://auth.example.com")

	session, err := client.Login(ctx, authsdk.LoginRequest{
		Email:      "ada@example.com",
		Password:   "correct horse battery staple",
		DeviceCode: "7f1c2a",
		DeviceType: "ios",
		DeviceName: "Ada's phone",
	})

	token, err := session.AccessToken(ctx) // refreshed when close to expiry

	err = session.Logout(ctx)

# Token Refresh

The service never rotates refresh tokens. A refresh call returns a new access
token only, so the Session keeps the refresh token it was created with for its
whole lifetime. Access tokens are refreshed 30 seconds before they expire.

# Errors

Error responses are returned as *APIError. Compare codes with IsErrorCode:

	_, err := client.Refresh(ctx, refreshToken)
	if authsdk.IsErrorCode(err, authsdk.ErrorCodeInvalidGrant) {
		// sign in again
	}
*/
package authsdk
