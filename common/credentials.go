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

package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/comcast/pdumetrics/config"
	pdu_vault "github.com/comcast/pdumetrics/vault"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingCommunity = errors.New("missing snmp community")

	Communities = CommunityCredentials{
		Creds:    make(map[string]string),
		Profiles: make(map[string]*pdu_vault.SecretProperties),
	}
)

// SecretReader reads the secret of a device. *vault.Vault implements it.
type SecretReader interface {
	ReadSecret(ctx context.Context, props *pdu_vault.SecretProperties, target string) (map[string]interface{}, error)
}

// CommunityCredentials caches SNMP communities per target.
type CommunityCredentials struct {
	mu       sync.Mutex
	Creds    map[string]string
	Profiles map[string]*pdu_vault.SecretProperties
	Vault    SecretReader
}

func credKey(profile, target string) string {
	return profile + "/" + target
}

func (c *CommunityCredentials) Get(profile, target string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.Creds[credKey(profile, target)]
	return val, ok
}

func (c *CommunityCredentials) Set(profile, target, community string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Creds[credKey(profile, target)] = community
}

// Forget drops the cached communities of target for every profile so the
// next lookup goes to the secrets backend again.
func (c *CommunityCredentials) Forget(target string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.Creds {
		if strings.HasSuffix(key, "/"+target) {
			delete(c.Creds, key)
		}
	}
}

// Community returns the community for target. Without a profile the statically
// configured community is used, otherwise it is read from Vault and cached per
// profile and target.
func (c *CommunityCredentials) Community(ctx context.Context, profile, target string) (string, error) {
	if profile == "" {
		return config.GetConfig().Community, nil
	}

	c.mu.Lock()
	props, ok := c.Profiles[profile]
	backend := c.Vault
	c.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("unknown credential profile %q", profile)
	}

	if community, ok := c.Get(profile, target); ok {
		return community, nil
	}
	if backend == nil {
		return "", fmt.Errorf("credential profile %q requires vault, which is not configured", profile)
	}

	data, err := backend.ReadSecret(ctx, props, target)
	if err != nil {
		zap.L().Error("issue retrieving community from vault", zap.String("target", target),
			zap.String("credential_profile", profile), zap.Error(err))
		return "", fmt.Errorf("issue retrieving community from vault using target %s: %w", target, err)
	}

	community, ok := data[props.CommunityField].(string)
	if !ok || community == "" {
		return "", fmt.Errorf("%w: the secret for target %s has no %q field", ErrMissingCommunity, target, props.CommunityField)
	}

	c.Set(profile, target, community)
	return community, nil
}

// credentialProfiles is a kingpin value holding the --credentials.profiles
// document. YAML and JSON are both accepted.
type credentialProfiles struct {
	creds *CommunityCredentials
}

type profilesDoc struct {
	Profiles []struct {
		Name                       string `yaml:"name"`
		pdu_vault.SecretProperties `yaml:",inline"`
	} `yaml:"profiles"`
}

func (p *credentialProfiles) Set(value string) error {
	var doc profilesDoc
	if err := yaml.Unmarshal([]byte(value), &doc); err != nil {
		return fmt.Errorf("unable to parse credential profiles: %w", err)
	}

	p.creds.mu.Lock()
	defer p.creds.mu.Unlock()
	for _, prof := range doc.Profiles {
		if prof.Name == "" || prof.MountPath == "" || prof.CommunityField == "" {
			return fmt.Errorf("credential profile %q needs name, mountPath and communityField", prof.Name)
		}
		props := prof.SecretProperties
		p.creds.Profiles[prof.Name] = &props
	}
	return nil
}

func (p *credentialProfiles) String() string {
	p.creds.mu.Lock()
	defer p.creds.mu.Unlock()
	names := make([]string, 0, len(p.creds.Profiles))
	for name := range p.creds.Profiles {
		names = append(names, name)
	}
	return strings.Join(names, ",")
}

// CredentialProf registers the credential profiles flag, filling Communities.
func CredentialProf(s kingpin.Settings) *CommunityCredentials {
	s.SetValue(&credentialProfiles{creds: &Communities})
	return &Communities
}
