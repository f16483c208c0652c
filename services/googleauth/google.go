// Package googleauth implements the Google OAuth2 login flow.
package googleauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
)

const (
	stateTTL    = 10 * time.Minute
	userInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

var (
	ErrDisabled         = errors.New("el inicio de sesión con Google no está configurado")
	ErrInvalidState     = errors.New("estado de autenticación inválido o expirado")
	ErrEmailNotVerified = errors.New("el correo de Google no está verificado")
	ErrDomainNotAllowed = errors.New("el dominio del correo no está permitido")
)

// UserInfo holds the claims read from Google's userinfo endpoint.
type UserInfo struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	HostedDomain  string
}

type Provider struct {
	oauth         *oauth2.Config
	states        *cache.Cache
	userInfoURL   string
	allowedDomain string
}

func NewProvider(conf core.GoogleConfig) *Provider {
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     conf.ClientID,
			ClientSecret: conf.ClientSecret,
			RedirectURL:  conf.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		states:        cache.New(stateTTL, 2*stateTTL),
		userInfoURL:   userInfoURL,
		allowedDomain: strings.ToLower(conf.AllowedDomain),
	}
}

func (p *Provider) Enabled() bool {
	return p.oauth.ClientID != "" && p.oauth.ClientSecret != ""
}

// AuthCodeURL returns the consent page URL, with a fresh single-use state.
func (p *Provider) AuthCodeURL() (string, error) {
	if !p.Enabled() {
		return "", ErrDisabled
	}
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "generating state")
	}
	state := base64.RawURLEncoding.EncodeToString(b)
	p.states.SetDefault(state, struct{}{})

	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOnline, oauth2.SetAuthURLParam("prompt", "select_account")}
	if p.allowedDomain != "" {
		opts = append(opts, oauth2.SetAuthURLParam("hd", p.allowedDomain))
	}
	return p.oauth.AuthCodeURL(state, opts...), nil
}

// Callback checks state, exchanges code and returns the verified Google user.
func (p *Provider) Callback(ctx context.Context, state, code string) (UserInfo, error) {
	if !p.Enabled() {
		return UserInfo{}, ErrDisabled
	}
	if _, ok := p.states.Get(state); !ok || state == "" {
		return UserInfo{}, ErrInvalidState
	}
	p.states.Delete(state)

	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return UserInfo{}, errors.Wrap(err, "exchanging code")
	}
	info, err := p.fetchUserInfo(ctx, tok)
	if err != nil {
		return UserInfo{}, err
	}

	if !info.EmailVerified {
		return UserInfo{}, ErrEmailNotVerified
	}
	if p.allowedDomain != "" {
		domain := info.HostedDomain
		if domain == "" {
			domain = info.Email[strings.LastIndex(info.Email, "@")+1:]
		}
		if strings.ToLower(domain) != p.allowedDomain {
			return UserInfo{}, ErrDomainNotAllowed
		}
	}
	return info, nil
}

func (p *Provider) fetchUserInfo(ctx context.Context, tok *oauth2.Token) (UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return UserInfo{}, errors.Wrap(err, "creating userinfo request")
	}
	res, err := p.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return UserInfo{}, errors.Wrap(err, "fetching userinfo")
	}
	defer res.Body.Close()

	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return UserInfo{}, errors.Wrap(err, "reading userinfo")
	}
	if res.StatusCode != http.StatusOK {
		return UserInfo{}, errors.Errorf("userinfo: status %d", res.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return UserInfo{}, errors.New("userinfo: invalid json")
	}

	r := gjson.ParseBytes(body)
	verified := r.Get("email_verified")
	return UserInfo{
		Subject: r.Get("sub").String(),
		Email:   strings.ToLower(r.Get("email").String()),
		// some responses carry the flag as a string
		EmailVerified: verified.Bool() || verified.String() == "true",
		Name:          r.Get("name").String(),
		HostedDomain:  r.Get("hd").String(),
	}, nil
}
