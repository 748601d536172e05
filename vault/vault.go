/*
 * Copyright 2026 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package vault

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"github.com/hashicorp/vault/api/auth/approle"
	"go.uber.org/zap"
)

const retryLoginAfter = 10 * time.Second

type Parameters struct {
	Address         string
	ApproleRoleID   string
	ApproleSecretID string
	CACertBytes     []byte
}

// SecretProperties locate the secret holding the SNMP community of a device.
// MountPath "kv2" selects the KV version 2 engine, anything else KV version 1.
type SecretProperties struct {
	MountPath      string `yaml:"mountPath" json:"mountPath"`
	Path           string `yaml:"path" json:"path"`
	CommunityField string `yaml:"communityField" json:"communityField"`
	// SecretName is read instead of a secret named after the device.
	SecretName string `yaml:"secretName,omitempty" json:"secretName,omitempty"`
}

// SecretPath returns the path of the secret for target below the mount.
func (p *SecretProperties) SecretPath(target string) string {
	name := target
	if p.SecretName != "" {
		name = p.SecretName
	}
	return path.Join(p.Path, name)
}

type Vault struct {
	mu         sync.RWMutex
	client     *vault.Client
	Parameters Parameters
	isLoggedIn bool
}

// NewVaultAppRoleClient creates a client for the given address. Login happens
// in RenewToken.
func NewVaultAppRoleClient(parameters Parameters) (*Vault, error) {
	conf := vault.DefaultConfig()
	conf.Address = parameters.Address
	if len(parameters.CACertBytes) > 0 {
		if err := conf.ConfigureTLS(&vault.TLSConfig{CACertBytes: parameters.CACertBytes}); err != nil {
			return nil, fmt.Errorf("unable to configure TLS: %w", err)
		}
	}

	client, err := vault.NewClient(conf)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize vault client: %w", err)
	}
	client.ClearToken()

	return &Vault{client: client, Parameters: parameters}, nil
}

func (v *Vault) login(ctx context.Context) (*vault.Secret, error) {
	v.mu.RLock()
	roleID, secretID := v.Parameters.ApproleRoleID, v.Parameters.ApproleSecretID
	v.mu.RUnlock()

	auth, err := approle.NewAppRoleAuth(roleID, &approle.SecretID{FromString: secretID})
	if err != nil {
		return nil, fmt.Errorf("unable to initialize approle authentication method: %w", err)
	}

	secret, err := v.client.Auth().Login(ctx, auth)
	if err != nil {
		return nil, fmt.Errorf("unable to login using approle auth method: %w", err)
	}
	if secret == nil || secret.Auth == nil {
		return nil, errors.New("approle login returned no auth info")
	}

	v.setLoggedIn(true)
	return secret, nil
}

// ReadSecret returns the data of the secret for target.
func (v *Vault) ReadSecret(ctx context.Context, props *SecretProperties, target string) (map[string]interface{}, error) {
	var (
		kv  *vault.KVSecret
		err error
	)

	p := props.SecretPath(target)
	if props.MountPath == "kv2" {
		kv, err = v.client.KVv2(props.MountPath).Get(ctx, p)
	} else {
		kv, err = v.client.KVv1(props.MountPath).Get(ctx, p)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read secret %s/%s: %w", props.MountPath, p, err)
	}

	return kv.Data, nil
}

func (v *Vault) IsLoggedIn() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.isLoggedIn
}

func (v *Vault) setLoggedIn(b bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.isLoggedIn = b
}

// RenewToken logs in and keeps the token alive until ctx is done. Failed
// logins are retried every 10 seconds. The token is revoked on return.
func (v *Vault) RenewToken(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	log := zap.L()

	for {
		secret, err := v.login(ctx)
		if err != nil {
			log.Error("unable to authenticate to vault", zap.Error(err))
			v.setLoggedIn(false)
		} else if err := v.watchToken(ctx, secret); err != nil {
			log.Error("unable to start managing token lifecycle", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			log.Info("stopping renew token go routine")
			return
		case <-time.After(retryLoginAfter):
		}
	}
}

// watchToken renews token until renewal is no longer possible or ctx is done.
// A nil error means login should be attempted again.
func (v *Vault) watchToken(ctx context.Context, token *vault.Secret) error {
	log := zap.L()

	if !token.Auth.Renewable {
		log.Info("token is not configured to be renewable, logging in again when it expires")
		var expired <-chan time.Time
		if token.Auth.LeaseDuration > 0 {
			expired = time.After(time.Duration(token.Auth.LeaseDuration) * time.Second)
		}
		select {
		case <-ctx.Done():
		case <-expired:
		}
		v.setLoggedIn(false)
		return nil
	}

	watcher, err := v.client.NewLifetimeWatcher(&vault.LifetimeWatcherInput{
		Secret:    token,
		Increment: token.Auth.LeaseDuration / 2,
	})
	if err != nil {
		return fmt.Errorf("unable to initialize new lifetime watcher for renewing auth token: %w", err)
	}

	go watcher.Start()
	defer watcher.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("revoking token before app shutdown")
			revokeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := v.client.Auth().Token().RevokeSelfWithContext(revokeCtx, v.client.Token()); err != nil {
				log.Error("unable to revoke token", zap.Error(err))
			}
			v.setLoggedIn(false)
			return nil
		case err := <-watcher.DoneCh():
			v.setLoggedIn(false)
			if err != nil {
				log.Error("failed to renew token. re-attempting login", zap.Error(err))
				return nil
			}
			log.Info("token can no longer be renewed. re-attempting login")
			return nil
		case renewal := <-watcher.RenewCh():
			v.client.SetToken(renewal.Secret.Auth.ClientToken)
			log.Debug("successfully renewed vault token", zap.Time("renewed_at", renewal.RenewedAt))
		}
	}
}
