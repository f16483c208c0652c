package user

import (
	"testing"
	"time"
)

func TestMakeVerifyToken(t *testing.T) {
	tg := tokenGenerator{secretKey: []byte("secret"), timeout: 3 * 24 * time.Hour}

	now := time.Now()
	usr := User{
		ID:        "2b4b8c6e-93a5-4c53-9d3b-51f0b4f1a001",
		Name:      "T",
		Username:  "t",
		Email:     "t@test.pe",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: now,
	}
	_ = usr.SetPassword("pwd")

	validToken := tg.makeToken(usr)

	// generate an expired token
	dayLate := tg.timeout + (24 * time.Hour)
	nowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken := tg.makeToken(usr)
	nowFunc = time.Now // reset

	// a new login invalidates previous tokens
	loggedIn := usr
	loggedIn.LastLogin = now.Add(time.Minute)

	otherKey := tokenGenerator{secretKey: []byte("other"), timeout: tg.timeout}

	tests := []struct {
		name    string
		tg      tokenGenerator
		usr     User
		token   string
		wantErr error
	}{
		{name: "no token", tg: tg, usr: usr, wantErr: errInvalidToken},
		{name: "invalid parts len", tg: tg, usr: usr, token: "lmaooolol", wantErr: errInvalidToken},
		{name: "invalid base32", tg: tg, usr: usr, token: "hahaha-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid timestamp", tg: tg, usr: usr, token: "NRXWY-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid token", tg: tg, usr: usr, token: "HE4TS-sigsig-sig", wantErr: errInvalidToken},
		{name: "expired token", tg: tg, usr: usr, token: expiredToken, wantErr: errTokenExpired},
		{name: "user logged in since", tg: tg, usr: loggedIn, token: validToken, wantErr: errInvalidToken},
		{name: "other secret key", tg: otherKey, usr: usr, token: validToken, wantErr: errInvalidToken},
		{name: "valid token", tg: tg, usr: usr, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.tg.verifyToken(tt.usr, tt.token); err != tt.wantErr {
				t.Errorf("verifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncodeDecodeUID(t *testing.T) {
	usr := User{ID: "2b4b8c6e-93a5-4c53-9d3b-51f0b4f1a001"}
	got, err := decodeUID(EncodeUID(usr))
	if err != nil {
		t.Fatalf("decodeUID() error = %v", err)
	}
	if got != usr.ID {
		t.Errorf("decodeUID() = %v, want %v", got, usr.ID)
	}
}

func TestPasswordPolicyViolation(t *testing.T) {
	tests := []struct {
		name string
		pwd  string
		want string
	}{
		{name: "too short", pwd: "Ab1!", want: pwdMinLenTag},
		{name: "whitespace", pwd: "Abc 123!xyz", want: pwdNoSpaceTag},
		{name: "all numeric", pwd: "1234567890", want: pwdNotAllNumTag},
		{name: "no special", pwd: "Abcdef123", want: pwdComplexityTag},
		{name: "no upper", pwd: "abcdef12!", want: pwdComplexityTag},
		{name: "similar to username", pwd: "Jperez2024!", want: pwdAttrSimTag},
		{name: "common", pwd: "P@ssw0rd", want: pwdNoCommonTag},
		{name: "valid", pwd: "Tr3s-Cuervos!", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := passwordPolicyViolation(tt.pwd, "Juan Perez", "jperez2024", "jperez@unprg.edu.pe"); got != tt.want {
				t.Errorf("passwordPolicyViolation() = %q, want %q", got, tt.want)
			}
		})
	}
}
