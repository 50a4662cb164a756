package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/stanza/internal/auth/domain"
	"github.com/aussiebroadwan/stanza/internal/auth/store"
	"github.com/aussiebroadwan/stanza/pkg/idx"
	"github.com/aussiebroadwan/stanza/pkg/slogx"
)

// FindOrCreateDevice returns the user's device with the given code,
// registering it if this is the first sign-in from it. Type and name are
// only recorded on creation. Either way the device is stamped as seen.
func (s *SessionService) FindOrCreateDevice(
	ctx context.Context,
	userID, code, deviceType, name string,
) (domain.Device, error) {
	info, err := normalizeDevice(userID, domain.DeviceInfo{Code: code, Type: deviceType, Name: name})
	if err != nil {
		return domain.Device{}, err
	}

	now := s.issuer.Now()
	dev, err := s.resolveDevice(ctx, s.store.Devices(), userID, info, now)
	if errors.Is(err, store.ErrAlreadyExists) {
		// A concurrent sign-in from the same device got there first.
		dev, err = s.store.Devices().TouchDevice(ctx, userID, info.Code, now)
	}
	if err != nil {
		return domain.Device{}, err
	}
	return dev, nil
}

func normalizeDevice(userID string, info domain.DeviceInfo) (domain.DeviceInfo, error) {
	info = domain.DeviceInfo{
		Code: strings.TrimSpace(info.Code),
		Type: strings.TrimSpace(info.Type),
		Name: strings.TrimSpace(info.Name),
	}
	if userID == "" || info.Code == "" {
		return domain.DeviceInfo{}, ErrInvalidDevice
	}
	return info, nil
}

// resolveDevice stamps the device as seen at now, creating it when it is
// new. Losing an insert race to another sign-in from the same device
// surfaces as store.ErrAlreadyExists.
func (s *SessionService) resolveDevice(
	ctx context.Context,
	devices store.Devices,
	userID string,
	info domain.DeviceInfo,
	now time.Time,
) (domain.Device, error) {
	dev, err := devices.TouchDevice(ctx, userID, info.Code, now)
	if err == nil {
		return dev, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Device{}, fmt.Errorf("touch device: %w", err)
	}

	dev = domain.Device{
		ID:         idx.NewAt(now).String(),
		UserID:     userID,
		Code:       info.Code,
		Type:       info.Type,
		Name:       info.Name,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := devices.CreateDevice(ctx, dev); err != nil {
		return domain.Device{}, fmt.Errorf("create device: %w", err)
	}

	slogx.FromContext(ctx).Info("device registered", "user_id", userID, "device_id", dev.ID)
	return dev, nil
}
