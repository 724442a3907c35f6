package ir

var opCodeNames = [...]string{
	OpInvalid:    "invalid",
	OpInsnStart:  "insn_start",
	OpMov:        "mov",
	OpAdd:        "add",
	OpSub:        "sub",
	OpAnd:        "and",
	OpOr:         "or",
	OpXor:        "xor",
	OpShl:        "shl",
	OpShr:        "shr",
	OpSar:        "sar",
	OpMul:        "mul",
	OpMulU2:      "mulu2",
	OpMulS2:      "muls2",
	OpDiv:        "div",
	OpDivU:       "divu",
	OpRem:        "rem",
	OpRemU:       "remu",
	OpExt32S:     "ext32s",
	OpExt32U:     "ext32u",
	OpSetcond:    "setcond",
	OpMovcond:    "movcond",
	OpBrcond:     "brcond",
	OpBr:         "br",
	OpLabel:      "label",
	OpLoad:       "load",
	OpStore:      "store",
	OpCall:       "call",
	OpGotoTB:     "goto_tb",
	OpExitTB:     "exit_tb",
	OpLookupGoto: "lookup_goto",
}

// String returns the lowercase mnemonic of the op code.
func (c OpCode) String() string {
	if int(c) < len(opCodeNames) && opCodeNames[c] != "" {
		return opCodeNames[c]
	}
	return "invalid"
}

var helperNames = [...]string{
	HelperNone:            "none",
	HelperRaiseException:  "raise_exception",
	HelperSetRoundingMode: "set_rounding_mode",
	HelperCSR:             "csr",
	HelperFAddS:           "fadd_s",
	HelperFSubS:           "fsub_s",
	HelperFMulS:           "fmul_s",
	HelperFDivS:           "fdiv_s",
	HelperFSqrtS:          "fsqrt_s",
	HelperFMinS:           "fmin_s",
	HelperFMaxS:           "fmax_s",
	HelperFEqS:            "feq_s",
	HelperFLtS:            "flt_s",
	HelperFLeS:            "fle_s",
	HelperFAddD:           "fadd_d",
	HelperFSubD:           "fsub_d",
	HelperFMulD:           "fmul_d",
	HelperFDivD:           "fdiv_d",
	HelperFSqrtD:          "fsqrt_d",
	HelperFMinD:           "fmin_d",
	HelperFMaxD:           "fmax_d",
	HelperFEqD:            "feq_d",
	HelperFLtD:            "flt_d",
	HelperFLeD:            "fle_d",
	HelperFCvtSD:          "fcvt_s_d",
	HelperFCvtDS:          "fcvt_d_s",
	HelperFCvtWS:          "fcvt_w_s",
	HelperFCvtWUS:         "fcvt_wu_s",
	HelperFCvtLS:          "fcvt_l_s",
	HelperFCvtLUS:         "fcvt_lu_s",
	HelperFCvtSW:          "fcvt_s_w",
	HelperFCvtSWU:         "fcvt_s_wu",
	HelperFCvtSL:          "fcvt_s_l",
	HelperFCvtSLU:         "fcvt_s_lu",
	HelperFCvtWD:          "fcvt_w_d",
	HelperFCvtWUD:         "fcvt_wu_d",
	HelperFCvtLD:          "fcvt_l_d",
	HelperFCvtLUD:         "fcvt_lu_d",
	HelperFCvtDW:          "fcvt_d_w",
	HelperFCvtDWU:         "fcvt_d_wu",
	HelperFCvtDL:          "fcvt_d_l",
	HelperFCvtDLU:         "fcvt_d_lu",
}

// String returns the helper name.
func (h Helper) String() string {
	if int(h) < len(helperNames) && helperNames[h] != "" {
		return helperNames[h]
	}
	return "invalid"
}

var condNames = [...]string{
	CondEQ:  "eq",
	CondNE:  "ne",
	CondLT:  "lt",
	CondGE:  "ge",
	CondLTU: "ltu",
	CondGEU: "geu",
}

// String returns the condition mnemonic.
func (c Cond) String() string {
	if int(c) < len(condNames) {
		return condNames[c]
	}
	return "invalid"
}
