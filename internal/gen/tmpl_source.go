package gen

// Templates of the dispatch source.

const namedCCHeader = `%(FILE_HEADER)s
%(NOT_TCB_MESSAGE)s
#include "%(FILENAME_BASE)s_named_decoder.h"
`

const namedCCTraceInclude = `#include <stdio.h>
`

const namedCCPreamble = `
using nacl_arm_dec::ClassDecoder;
using nacl_arm_dec::Instruction;

namespace nacl_arm_test {

Named%(decoder_name)s::Named%(decoder_name)s()
{}

`

const parseTableMethodHeader = `/*
 * Implementation of table %(table_name)s.
`

const parseTableCitation = ` * Specified by: %(citation)s
`

const parseTableMethodSignature = ` */
const NamedClassDecoder& Named%(decoder_name)s::decode_%(table_name)s(
     const nacl_arm_dec::Instruction inst) const {
`

const methodHeaderTrace = `  fprintf(stderr, "decode %(table_name)s\n");
`

const methodDispatchBegin = `
  // %(row_comment)s
  if (%(condition)s) {
`

const methodDispatchTrace = `    fprintf(stderr, "  %(table_name)s row %(row_index)s\n");
`

const parseTableMethodRow = `    return %(action)s;
`

const methodDispatchClose = `  }
`

const parseTableMethodFooter = `
  // Catch any attempt to fall through...
  return not_implemented_;
}

`

const namedCCFooter = `const NamedClassDecoder& Named%(decoder_name)s::
decode_named(const nacl_arm_dec::Instruction inst) const {
  return decode_%(entry_table_name)s(inst);
}

const nacl_arm_dec::ClassDecoder& Named%(decoder_name)s::
decode(const nacl_arm_dec::Instruction inst) const {
  return decode_named(inst).named_decoder();
}

}  // namespace nacl_arm_test
`
