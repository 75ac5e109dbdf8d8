// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sheets reconciles two Google Sheets: rows of the target sheet
// whose URL ends in a key that is checked in the source sheet get their
// status cell set to TRUE in one batch update.
//
// Progress is remembered in a resume file holding the next target row to
// inspect, so a run cut short by the Sheets quota continues later instead
// of starting over.
package sheets
