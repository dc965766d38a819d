// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package owdecode is a container for the DS1977 1-wire packages.
//
// ds1977 decodes the stacked DS1977 protocol from 1-wire network layer events
// and drives the device; onewiretap produces those events from any
// onewire.Bus; ds9097 is a serial port 1-wire bus master; annotate renders the
// decoded annotations; common holds the CRC-16 shared by the others.
package owdecode
