// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gogpu provides a GPU texture backend for texpos built on
// gpucontext.TextureCreator.
//
// Each surface becomes one GPU texture; its position is the texture's
// index in the backend's texture list. When the device is lost the host
// calls DeviceLost, which drops every texture and lets texpos re-upload
// the retained surfaces to the new device:
//
//	b := gogpu.New(dc.TextureCreator())
//	m := texpos.New(b)
//	...
//	// on device loss, after the renderer has a new device:
//	b.SetCreator(dc.TextureCreator())
//	b.DeviceLost()
package gogpu
