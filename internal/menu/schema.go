/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package menu

// descriptionSchema validates ad-hoc menu descriptions before they are turned
// into item trees. It is deliberately strict: unknown properties are rejected
// so that typos surface as errors instead of silently breaking an item.
const descriptionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Menu description",
  "type": "object",
  "properties": {
    "name":     {"type": "string"},
    "icon":     {"type": "string"},
    "id":       {"type": "string"},
    "type":     {"type": "string"},
    "angle":    {"type": "number"},
    "command":  {"type": "string"},
    "uri":      {"type": "string"},
    "max":      {"type": "integer", "minimum": 0},
    "centered": {"type": "boolean"},
    "children": {"type": "array", "items": {"$ref": "#"}}
  },
  "additionalProperties": false
}`
