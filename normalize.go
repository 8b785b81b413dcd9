// Copyright 2020 Michael J. Fromberger. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cookiescan

import "time"

// chromeEpoch is the Chrome/Chromium timestamp epoch in Unix seconds,
// 1601-01-01T00:00:00Z.
const chromeEpoch = 11644473600

// webkitEpoch is the WebKit/Safari timestamp epoch in Unix seconds,
// 2001-01-01T00:00:00Z.
const webkitEpoch = 978307200

// ChromeTime converts a value in microseconds since the Chrome epoch to a
// time.Time in UTC. A zero input yields the zero time.Time, matching the
// convention used by Chromium's own "has_expires" flag.
func ChromeTime(usec int64) time.Time {
	if usec == 0 {
		return time.Time{}
	}
	sec := usec/1e6 - chromeEpoch
	nsec := (usec % 1e6) * 1e3
	return time.Unix(sec, nsec).UTC()
}

// TimeToChrome converts a time.Time to microseconds since the Chrome epoch.
func TimeToChrome(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	sec := t.Unix() + chromeEpoch
	return sec*1e6 + int64(t.Nanosecond())/1e3
}

// WebKitTime converts a value in seconds since the WebKit/Safari epoch
// (stored as an IEEE-754 double in .binarycookies files) to a time.Time in
// UTC.
func WebKitTime(sec float64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(int64(sec)+webkitEpoch, 0).UTC()
}

// TimeToWebKit converts a time.Time to seconds since the WebKit/Safari
// epoch.
func TimeToWebKit(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.Unix() - webkitEpoch)
}

// GeckoTime converts a Firefox moz_cookies "expiry" column (whole seconds
// since the Unix epoch) to a time.Time in UTC.
func GeckoTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// GeckoMicroTime converts a Firefox moz_cookies "creationTime" column
// (microseconds since the Unix epoch) to a time.Time in UTC.
func GeckoMicroTime(usec int64) time.Time {
	if usec == 0 {
		return time.Time{}
	}
	return time.UnixMicro(usec).UTC()
}
